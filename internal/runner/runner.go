// Package runner wires a browser session, the portal flow and the
// registration service into the three top-level operations the CLI and the
// telegram bot expose: check, book and register.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/artifacts"
	"github.com/Solarpaletten/dashkavisa/internal/browser"
	"github.com/Solarpaletten/dashkavisa/internal/config"
	"github.com/Solarpaletten/dashkavisa/internal/humanoid"
	"github.com/Solarpaletten/dashkavisa/internal/portal"
	"github.com/Solarpaletten/dashkavisa/internal/registration"
)

// Runner executes portal operations, each on its own freshly acquired
// browser session.
type Runner struct {
	log     *zap.Logger
	cfg     *config.Config
	manager *browser.Manager
	store   *artifacts.Store
	pacer   *humanoid.Pacer
}

// New builds a Runner. The artifacts store is optional; without it runs
// produce no diagnostic dumps.
func New(logger *zap.Logger, cfg *config.Config, manager *browser.Manager, store *artifacts.Store) *Runner {
	return &Runner{
		log:     logger.Named("runner"),
		cfg:     cfg,
		manager: manager,
		store:   store,
		pacer: humanoid.New(humanoid.Config{
			Mean:   900 * time.Millisecond,
			Jitter: 600 * time.Millisecond,
		}),
	}
}

func (r *Runner) newFlow(session *browser.Session) *portal.Flow {
	opts := []portal.Option{portal.WithPacer(r.pacer)}
	if r.store != nil {
		opts = append(opts, portal.WithSink(r.store))
	}
	return portal.NewFlow(session, r.cfg, r.log, opts...)
}

// CheckSlots logs in, opens the booking form and reports slot
// availability as a tri-state result.
func (r *Runner) CheckSlots(ctx context.Context) (portal.SlotsResult, error) {
	session, err := r.manager.Acquire(ctx)
	if err != nil {
		return portal.SlotsResult{}, fmt.Errorf("acquiring browser session: %w", err)
	}
	defer r.manager.Release(session)

	flow := r.newFlow(session)
	if err := flow.Login(ctx, r.cfg.Credentials); err != nil {
		return portal.SlotsResult{}, fmt.Errorf("login: %w", err)
	}
	if err := flow.StartBooking(ctx); err != nil {
		return portal.SlotsResult{}, fmt.Errorf("starting booking: %w", err)
	}
	return flow.DiscoverSlots(ctx), nil
}

// Book runs the full chain through date selection and booking completion.
// preferred may be empty, in which case the first available date wins.
// The returned string is the human-readable outcome of the final step.
func (r *Runner) Book(ctx context.Context, preferred string) (string, error) {
	session, err := r.manager.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring browser session: %w", err)
	}
	defer r.manager.Release(session)

	flow := r.newFlow(session)
	if err := flow.Login(ctx, r.cfg.Credentials); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if err := flow.StartBooking(ctx); err != nil {
		return "", fmt.Errorf("starting booking: %w", err)
	}

	res := flow.DiscoverSlots(ctx)
	switch {
	case res.Failed():
		return "", fmt.Errorf("slot discovery failed: %s", res.Reason)
	case res.None():
		return "no slots available", nil
	}

	selMsg, err := flow.SelectDate(ctx, preferred)
	if err != nil {
		return "", fmt.Errorf("selecting date: %w", err)
	}
	r.log.Info("Date selected", zap.String("result", selMsg))

	doneMsg, err := flow.CompleteBooking(ctx)
	if err != nil {
		return "", fmt.Errorf("completing booking: %w", err)
	}
	return fmt.Sprintf("%s; %s", selMsg, doneMsg), nil
}

// Register runs the account registration service across both browser
// backends and persists credentials for the user on success.
func (r *Runner) Register(ctx context.Context, userID int64) registration.Result {
	backends := []registration.Backend{
		registration.NewChromedpBackend(r.manager, r.cfg.Portal.RegisterURL, r.log),
		registration.NewPlaywrightBackend(r.cfg.Portal.RegisterURL, r.cfg.Browser.UserAgent, r.cfg.Browser.Headless, r.log),
	}
	svc := registration.NewService(r.log, backends, registration.WithLogin(r.loginProbe))

	retries := map[string]int{
		backends[0].Name(): r.cfg.Registration.ChromedpRetries,
		backends[1].Name(): r.cfg.Registration.PlaywrightRetries,
	}
	result := svc.Register(ctx, r.cfg.Credentials.Email, r.cfg.Credentials.Password, retries)

	if result.Success && r.store != nil {
		if _, err := r.store.SaveUserCredentials(userID, result.Email, result.Password); err != nil {
			r.log.Warn("Failed to persist user credentials", zap.Error(err))
		}
	}
	return result
}

// loginProbe verifies configured credentials with a real portal login on a
// throwaway session.
func (r *Runner) loginProbe(ctx context.Context) error {
	session, err := r.manager.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring browser session: %w", err)
	}
	defer r.manager.Release(session)
	return r.newFlow(session).Login(ctx, r.cfg.Credentials)
}
