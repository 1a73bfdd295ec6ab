package humanoid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStaysWithinEnvelope(t *testing.T) {
	p := NewSeeded(Config{Mean: 100 * time.Millisecond, Jitter: 50 * time.Millisecond}, 42)

	for i := 0; i < 200; i++ {
		d := p.next()
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond,
			"delay must stay within mean plus jitter with headroom")
	}
}

func TestZeroConfigDisablesDelays(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, time.Duration(0), p.next())

	start := time.Now()
	require.NoError(t, p.Pause(context.Background()))
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestSeededPacerIsReproducible(t *testing.T) {
	cfg := Config{Mean: 100 * time.Millisecond, Jitter: 80 * time.Millisecond}
	a := NewSeeded(cfg, 7)
	b := NewSeeded(cfg, 7)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.next(), b.next())
	}
}

func TestPauseHonorsCancellation(t *testing.T) {
	p := NewSeeded(Config{Mean: 5 * time.Second}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Pause(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
