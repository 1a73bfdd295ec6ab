package portal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/config"
)

// ErrNoCredentials is returned when the step is invoked without a configured
// account. Terminal for the run; never retried automatically.
var ErrNoCredentials = errors.New("portal credentials are not configured")

// ErrCaptchaDetected is returned when the login page serves a CAPTCHA.
// No solving is attempted; the challenge defeats automation by design.
var ErrCaptchaDetected = errors.New("captcha challenge detected on login page")

// Login drives the portal login form. Timeouts fail the step, not the
// process; the caller decides whether a fresh run is worth attempting.
func (f *Flow) Login(ctx context.Context, creds config.CredentialsConfig) error {
	if creds.Empty() {
		return ErrNoCredentials
	}

	loginURL := f.cfg.Portal.LoginURL
	f.log.Info("Opening login page", zap.String("url", loginURL))
	if err := f.driver.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("navigating to login page: %w", err)
	}

	if err := f.driver.WaitVisible(ctx, selEmailInput, waitLoginForm); err != nil {
		f.snapshot(ctx, "login_timeout")
		return fmt.Errorf("login form did not appear: %w", err)
	}

	// Diagnostic aid: keep what the portal served for later analysis.
	f.snapshotWithSource(ctx, "login_page_initial")

	source, err := f.driver.PageSource(ctx)
	if err == nil && hasCaptchaMarker(source) {
		f.log.Warn("CAPTCHA detected on login page, aborting")
		f.snapshot(ctx, "captcha_detected")
		return ErrCaptchaDetected
	}

	f.pause(ctx)
	if err := f.driver.SetValue(ctx, selEmailInput, creds.Email, waitShort); err != nil {
		return fmt.Errorf("entering email: %w", err)
	}
	f.log.Info("Entered email", zap.String("email", creds.Email))

	if err := f.driver.SetValue(ctx, selPasswordInput, creds.Password, waitShort); err != nil {
		return fmt.Errorf("entering password: %w", err)
	}
	f.log.Info("Entered password")

	f.pause(ctx)
	if err := f.clickAnyByText(ctx, loginButtonTexts); err != nil {
		return fmt.Errorf("login button not found: %w", err)
	}

	if err := f.driver.WaitURLContains(ctx, "dashboard", waitLoginRedirect); err != nil {
		f.log.Error("No dashboard redirect after login")
		f.snapshot(ctx, "login_error")
		return fmt.Errorf("login did not reach the dashboard: %w", err)
	}

	f.log.Info("Login successful")
	f.snapshot(ctx, "dashboard")
	return nil
}
