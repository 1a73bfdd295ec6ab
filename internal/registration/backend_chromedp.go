package registration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/browser"
)

const registerFormSelector = "#mat-input-0"

// ChromedpBackend reaches the registration form through the stealth
// chromedp session used by the rest of the tool.
type ChromedpBackend struct {
	manager     *browser.Manager
	registerURL string
	log         *zap.Logger
	waitForm    time.Duration
}

// NewChromedpBackend builds the chromedp backend over an existing session
// manager.
func NewChromedpBackend(manager *browser.Manager, registerURL string, logger *zap.Logger) *ChromedpBackend {
	return &ChromedpBackend{
		manager:     manager,
		registerURL: registerURL,
		log:         logger.Named("registration.chromedp"),
		waitForm:    15 * time.Second,
	}
}

func (b *ChromedpBackend) Name() string { return "chromedp_stealth" }

// ReachForm launches a fresh session, opens the register page and waits
// for the first form input to render.
func (b *ChromedpBackend) ReachForm(ctx context.Context) error {
	session, err := b.manager.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring browser session: %w", err)
	}
	defer b.manager.Release(session)

	if err := session.Navigate(ctx, b.registerURL); err != nil {
		return fmt.Errorf("opening register page: %w", err)
	}
	if err := session.WaitVisible(ctx, registerFormSelector, b.waitForm); err != nil {
		return fmt.Errorf("registration form did not render: %w", err)
	}
	b.log.Info("Registration form rendered", zap.String("url", b.registerURL))
	return nil
}
