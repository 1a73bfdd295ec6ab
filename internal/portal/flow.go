package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/config"
	"github.com/Solarpaletten/dashkavisa/internal/humanoid"
)

// Flow executes the booking steps against one exclusively-owned page driver.
// A Flow lives for one automation run; it is not safe for concurrent use.
type Flow struct {
	driver     PageDriver
	cfg        *config.Config
	log        *zap.Logger
	sink       Sink
	pacer      *humanoid.Pacer
	strategies []CandidateStrategy
	now        func() time.Time
}

// Option customizes a Flow.
type Option func(*Flow)

// WithSink attaches a diagnostic artifact sink.
func WithSink(s Sink) Option {
	return func(f *Flow) { f.sink = s }
}

// WithPacer attaches interaction pacing.
func WithPacer(p *humanoid.Pacer) Option {
	return func(f *Flow) { f.pacer = p }
}

// WithStrategies overrides the candidate strategy order.
func WithStrategies(s []CandidateStrategy) Option {
	return func(f *Flow) { f.strategies = s }
}

// WithClock overrides the wall clock used for month-label fallbacks.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
		f.strategies = defaultStrategies(now)
	}
}

// NewFlow builds a Flow around a driver.
func NewFlow(driver PageDriver, cfg *config.Config, logger *zap.Logger, opts ...Option) *Flow {
	f := &Flow{
		driver: driver,
		cfg:    cfg,
		log:    logger.Named("portal"),
		now:    time.Now,
	}
	f.strategies = defaultStrategies(f.now)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// pause inserts an interaction delay if pacing is configured. Cancellation
// surfaces as a context error at the next driver call, so it is ignored here.
func (f *Flow) pause(ctx context.Context) {
	if f.pacer != nil {
		_ = f.pacer.Pause(ctx)
	}
}

// snapshot captures a best-effort diagnostic screenshot. Never fails a step.
func (f *Flow) snapshot(ctx context.Context, step string) {
	if f.sink == nil {
		return
	}
	png, err := f.driver.Screenshot(ctx)
	if err != nil {
		f.log.Debug("Screenshot capture failed", zap.String("step", step), zap.Error(err))
		return
	}
	if _, err := f.sink.SaveScreenshot(step, png); err != nil {
		f.log.Debug("Screenshot save failed", zap.String("step", step), zap.Error(err))
	}
}

// snapshotWithSource captures a screenshot plus the raw page markup.
func (f *Flow) snapshotWithSource(ctx context.Context, step string) {
	f.snapshot(ctx, step)
	if f.sink == nil {
		return
	}
	source, err := f.driver.PageSource(ctx)
	if err != nil {
		f.log.Debug("Page source capture failed", zap.String("step", step), zap.Error(err))
		return
	}
	if _, err := f.sink.SaveMarkup(step, source); err != nil {
		f.log.Debug("Page source save failed", zap.String("step", step), zap.Error(err))
	}
}

// pageMarker scans the current page's visible text for the first matching
// marker.
func (f *Flow) pageMarker(ctx context.Context, markers []string) (string, bool) {
	source, err := f.driver.PageSource(ctx)
	if err != nil {
		return "", false
	}
	return findMarker(source, markers)
}

// clickWithFallback clicks an element, falling back to a forced
// script-driven click when the normal click is intercepted.
func (f *Flow) clickWithFallback(ctx context.Context, el Element) error {
	if err := f.driver.ClickElement(ctx, el); err != nil {
		f.log.Warn("Normal click failed, retrying with script click", zap.Error(err))
		return f.driver.ScriptClick(ctx, el)
	}
	return nil
}

// clickAnyByText tries each button text in order and clicks the first match.
func (f *Flow) clickAnyByText(ctx context.Context, texts []string) error {
	var err error
	for _, t := range texts {
		if err = f.driver.ClickByText(ctx, t, waitShort); err == nil {
			f.log.Info("Clicked control", zap.String("text", t))
			return nil
		}
	}
	return err
}

// collectCandidates runs the flow's strategy list against the live page.
func (f *Flow) collectCandidates(ctx context.Context) ([]Candidate, error) {
	return collectCandidates(ctx, f.driver, f.strategies, f.log)
}
