// Package browser owns the lifecycle of one driven Chrome process per
// automation run: an isolated profile directory, anti-automation launch
// flags, stealth script injection, and best-effort teardown.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/browser/stealth"
	"github.com/Solarpaletten/dashkavisa/internal/config"
)

// Temp-file patterns left behind by crashed runs. Removed wholesale before
// every acquire.
var staleTempGlobs = []string{
	"/tmp/chrome_profile_*",
	"/tmp/.com.google.Chrome.*",
}

// Processes force-killed before every acquire. This is a blunt, system-wide
// sweep, not scoped to our own children: leaked processes from prior crashed
// runs are exactly what it exists to clear.
var staleProcessPatterns = []string{"chrome", "chromedriver"}

// Manager creates and destroys browser sessions.
type Manager struct {
	logger *zap.Logger
	cfg    *config.Config
}

// NewManager builds a session manager.
func NewManager(logger *zap.Logger, cfg *config.Config) *Manager {
	return &Manager{
		logger: logger.Named("session_manager"),
		cfg:    cfg,
	}
}

// Acquire force-cleans leftovers from previous runs, then launches a fresh
// browser with an isolated, never-reused profile directory. On any setup
// failure the partial profile directory is removed and an error returned;
// callers treat that as a setup failure and do not retry (registration is
// the one exception, with its own loop).
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.ForceCleanup(ctx)

	profileDir, err := os.MkdirTemp("", m.cfg.Browser.ProfilePrefix)
	if err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}
	m.logger.Info("Created profile directory", zap.String("dir", profileDir))

	opts := m.allocatorOptions(profileDir)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Errorf),
	)

	fail := func(err error) (*Session, error) {
		browserCancel()
		allocCancel()
		if rmErr := os.RemoveAll(profileDir); rmErr != nil {
			m.logger.Warn("Failed to remove partial profile directory", zap.Error(rmErr))
		}
		return nil, err
	}

	// First Run starts the browser process.
	if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
		return fail(fmt.Errorf("launching browser: %w", err))
	}

	// Non-fatal: a session without evasions is degraded, not useless.
	if err := chromedp.Run(browserCtx, stealth.Apply()); err != nil {
		m.logger.Warn("Failed to apply stealth evasions", zap.Error(err))
	}

	s := &Session{
		id:          uuid.New().String(),
		profileDir:  profileDir,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      browserCancel,
		log:         m.logger.Named("session"),
	}
	m.logger.Info("Browser session acquired",
		zap.String("session_id", s.id),
		zap.Bool("headless", m.cfg.Browser.Headless))
	return s, nil
}

// Release quits the browser and deletes the profile directory. Failures are
// logged and swallowed; the caller must not assume reclamation succeeded —
// the next Acquire's force cleanup papers over whatever is left. Idempotent.
func (m *Manager) Release(s *Session) {
	if s == nil {
		return
	}
	s.releaseOnce.Do(func() {
		s.cancel()
		s.allocCancel()
		if err := os.RemoveAll(s.profileDir); err != nil {
			m.logger.Warn("Failed to remove profile directory",
				zap.String("dir", s.profileDir), zap.Error(err))
		} else {
			m.logger.Info("Profile directory removed", zap.String("dir", s.profileDir))
		}
	})
}

// allocatorOptions configures the browser executable: automation detection
// disabled at the flag level, desktop user agent, caching off, isolated
// profile.
func (m *Manager) allocatorOptions(profileDir string) []chromedp.ExecAllocatorOption {
	bcfg := m.cfg.Browser
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", bcfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserDataDir(profileDir),

		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.Flag("incognito", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("allow-running-insecure-content", true),

		chromedp.Flag("disable-application-cache", true),
		chromedp.Flag("disable-cache", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", bcfg.Headless),

		chromedp.WindowSize(bcfg.WindowWidth, bcfg.WindowHeight),
	)
	if bcfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(bcfg.UserAgent))
	}
	return opts
}

// ForceCleanup kills stale browser processes system-wide and deletes known
// temp-file patterns. Every error is swallowed: this is recovery from a
// previous run's mess, not part of the current run's contract.
func (m *Manager) ForceCleanup(ctx context.Context) {
	m.logger.Info("Force-cleaning stale browser processes and temp files")
	for _, pattern := range staleProcessPatterns {
		if err := exec.CommandContext(ctx, "pkill", "-9", "-f", pattern).Run(); err != nil {
			// Non-zero exit also means "nothing matched"; only worth a debug line.
			m.logger.Debug("pkill", zap.String("pattern", pattern), zap.Error(err))
		}
	}
	removeTempGlobs(staleTempGlobs, m.logger)
}

// removeTempGlobs deletes everything matching the given glob patterns.
func removeTempGlobs(patterns []string, log *zap.Logger) {
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Warn("Bad temp glob", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				log.Warn("Failed to remove stale temp path",
					zap.String("path", match), zap.Error(err))
			}
		}
	}
}
