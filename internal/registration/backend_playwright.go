package registration

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// PlaywrightBackend reaches the registration form through playwright's
// bundled Chromium. Its launch fingerprint differs from the chromedp
// session, which sometimes gets past checks the primary backend does not.
type PlaywrightBackend struct {
	registerURL string
	userAgent   string
	headless    bool
	log         *zap.Logger
}

// NewPlaywrightBackend builds the playwright fallback backend.
func NewPlaywrightBackend(registerURL, userAgent string, headless bool, logger *zap.Logger) *PlaywrightBackend {
	return &PlaywrightBackend{
		registerURL: registerURL,
		userAgent:   userAgent,
		headless:    headless,
		log:         logger.Named("registration.playwright"),
	}
}

func (b *PlaywrightBackend) Name() string { return "playwright" }

// ReachForm launches a fresh Chromium, opens the register page and waits
// for the first form input to render.
func (b *PlaywrightBackend) ReachForm(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}
	defer func() {
		if err := pw.Stop(); err != nil {
			b.log.Warn("Failed to stop playwright", zap.Error(err))
		}
	}()

	chromium, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return fmt.Errorf("launching chromium: %w", err)
	}
	defer chromium.Close()

	browserCtx, err := chromium.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(b.userAgent),
	})
	if err != nil {
		return fmt.Errorf("creating browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return fmt.Errorf("opening page: %w", err)
	}

	if _, err := page.Goto(b.registerURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return fmt.Errorf("opening register page: %w", err)
	}

	if err := page.Locator(registerFormSelector).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(15000),
	}); err != nil {
		return fmt.Errorf("registration form did not render: %w", err)
	}

	b.log.Info("Registration form rendered", zap.String("url", b.registerURL))
	return nil
}
