package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	name     string
	attempts int
	// succeedOn makes ReachForm succeed on the n-th attempt (1-based);
	// zero means it always fails.
	succeedOn int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) ReachForm(ctx context.Context) error {
	b.attempts++
	if b.succeedOn > 0 && b.attempts >= b.succeedOn {
		return nil
	}
	return errors.New("form blocked")
}

func newTestService(t *testing.T, backends []Backend, opts ...Option) (*Service, *[]time.Duration) {
	t.Helper()
	svc := NewService(zap.NewNop(), backends, opts...)
	var slept []time.Duration
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return svc, &slept
}

func TestRegisterExhaustsBothBackends(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth"}
	b := &fakeBackend{name: "playwright"}
	svc, slept := newTestService(t, []Backend{a, b})

	res := svc.Register(context.Background(), "", "", map[string]int{
		"chromedp_stealth": 2,
		"playwright":       2,
	})

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "chromedp_stealth")
	assert.Contains(t, res.Message, "playwright")
	assert.Equal(t, 2, a.attempts)
	assert.Equal(t, 2, b.attempts)

	// One backoff per backend between its two attempts: 10 + 5*0 seconds.
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, *slept)
}

func TestBackoffGrowsLinearly(t *testing.T) {
	assert.Equal(t, 10*time.Second, backoff(0))
	assert.Equal(t, 15*time.Second, backoff(1))
	assert.Equal(t, 20*time.Second, backoff(2))
}

func TestRegisterSecondBackendSucceeds(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth"}
	b := &fakeBackend{name: "playwright", succeedOn: 1}
	svc, _ := newTestService(t, []Backend{a, b})

	res := svc.Register(context.Background(), "", "", map[string]int{
		"chromedp_stealth": 1,
		"playwright":       1,
	})

	require.True(t, res.Success)
	assert.Contains(t, res.Email, "visauser_")
	assert.Contains(t, res.Email, "@example.com")
	assert.Len(t, res.Password, 12)
	assert.Contains(t, res.Message, "playwright")
	assert.Contains(t, res.Message, "form submission pending implementation")
}

func TestRegisterFirstBackendShadowsSecond(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth", succeedOn: 2}
	b := &fakeBackend{name: "playwright", succeedOn: 1}
	svc, slept := newTestService(t, []Backend{a, b})

	res := svc.Register(context.Background(), "", "", map[string]int{
		"chromedp_stealth": 3,
		"playwright":       3,
	})

	require.True(t, res.Success)
	assert.Contains(t, res.Message, "chromedp_stealth")
	assert.Zero(t, b.attempts, "second backend must not run once the first succeeds")
	assert.Equal(t, []time.Duration{10 * time.Second}, *slept)
}

func TestRegisterLoginFirstWithConfiguredAccount(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth"}
	loginCalls := 0
	svc, _ := newTestService(t, []Backend{a}, WithLogin(func(ctx context.Context) error {
		loginCalls++
		return nil
	}))

	res := svc.Register(context.Background(), "old@example.com", "oldpass", map[string]int{
		"chromedp_stealth": 1,
	})

	require.True(t, res.Success)
	assert.Equal(t, 1, loginCalls)
	assert.Equal(t, "old@example.com", res.Email)
	assert.Equal(t, "oldpass", res.Password)
	assert.Zero(t, a.attempts, "a verified account makes registration unnecessary")
}

func TestRegisterFallsBackWhenLoginFails(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth", succeedOn: 1}
	svc, _ := newTestService(t, []Backend{a}, WithLogin(func(ctx context.Context) error {
		return errors.New("wrong password")
	}))

	res := svc.Register(context.Background(), "old@example.com", "oldpass", map[string]int{
		"chromedp_stealth": 1,
	})

	require.True(t, res.Success)
	assert.Equal(t, 1, a.attempts)
	assert.NotEqual(t, "old@example.com", res.Email)
}

func TestRegisterStopsOnCancelledContext(t *testing.T) {
	a := &fakeBackend{name: "chromedp_stealth"}
	b := &fakeBackend{name: "playwright"}
	svc := NewService(zap.NewNop(), []Backend{a, b})
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.Register(ctx, "", "", map[string]int{
		"chromedp_stealth": 3,
		"playwright":       3,
	})

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "cancelled")
	assert.Equal(t, 1, a.attempts, "cancellation must cut the retry loop short")
}

func TestSynthesizedPasswordCharset(t *testing.T) {
	svc := NewService(zap.NewNop(), nil)
	creds := svc.synthesize()
	require.Len(t, creds.password, 12)
	for _, r := range creds.password {
		assert.Contains(t, passwordCharset, string(r))
	}
}
