// Package humanoid paces browser interactions so they do not land on the
// wire with machine-regular timing. Delays drift along a Perlin noise curve
// rather than being independently random, which is closer to how a person
// speeds up and slows down over a session.
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/aquilax/go-perlin"
)

const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 3
	// Step along the noise curve per pause; small enough that consecutive
	// delays stay correlated.
	noiseStep = 0.1
)

// Config controls the pacing envelope. The zero value disables all delays,
// which is what tests want.
type Config struct {
	Mean   time.Duration `mapstructure:"mean"`
	Jitter time.Duration `mapstructure:"jitter"`
}

// Pacer produces human-plausible pauses between UI actions. Safe for use
// from a single flow goroutine; the mutex only guards the noise cursor.
type Pacer struct {
	cfg   Config
	noise *perlin.Perlin

	mu sync.Mutex
	t  float64
}

// New creates a Pacer with a time-seeded noise source.
func New(cfg Config) *Pacer {
	return NewSeeded(cfg, time.Now().UnixNano())
}

// NewSeeded creates a Pacer with a fixed seed for reproducible timing.
func NewSeeded(cfg Config, seed int64) *Pacer {
	return &Pacer{
		cfg:   cfg,
		noise: perlin.NewPerlinRandSource(perlinAlpha, perlinBeta, perlinN, rand.NewSource(seed)),
	}
}

// next returns the upcoming delay, advancing the noise cursor.
func (p *Pacer) next() time.Duration {
	if p == nil || p.cfg.Mean <= 0 {
		return 0
	}
	p.mu.Lock()
	p.t += noiseStep
	// Noise1D output is roughly [-1, 1].
	n := p.noise.Noise1D(p.t)
	p.mu.Unlock()

	d := p.cfg.Mean + time.Duration(float64(p.cfg.Jitter)*n)
	if d < 0 {
		d = 0
	}
	return d
}

// Pause blocks for the next delay, respecting context cancellation.
func (p *Pacer) Pause(ctx context.Context) error {
	d := p.next()
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
