package portal

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Candidate is a calendar cell or other UI element that may represent a
// bookable date. Valid only while the originating page is still loaded.
type Candidate struct {
	Element Element
	Label   string
}

// CandidateStrategy is one way of reading bookable dates out of the current
// page. Strategies are pure with respect to the page: they enumerate, they
// never click.
type CandidateStrategy struct {
	Name     string
	Discover func(ctx context.Context, d PageDriver) ([]Candidate, error)
}

// defaultStrategies returns the ordered fallback list used by discovery and
// selection. The first strategy yielding a non-empty result wins.
func defaultStrategies(now func() time.Time) []CandidateStrategy {
	return []CandidateStrategy{
		{
			Name:     "calendar_cells",
			Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) { return calendarCells(ctx, d, now) },
		},
		{
			Name:     "generic_date_elements",
			Discover: genericDateElements,
		},
	}
}

// calendarCells reads the calendar widget's non-disabled cells and combines
// each day number with the displayed month/year label.
func calendarCells(ctx context.Context, d PageDriver, now func() time.Time) ([]Candidate, error) {
	cells, err := d.Elements(ctx, selCalendarCells)
	if err != nil {
		return nil, err
	}

	month, err := d.Text(ctx, selMonthLabel, waitShort)
	if err != nil || strings.TrimSpace(month) == "" {
		// The label is cosmetic context for the user; the current month is a
		// reasonable stand-in when the widget hides it.
		month = now().Format("January 2006")
	}
	month = strings.TrimSpace(month)

	var out []Candidate
	for _, cell := range cells {
		day := strings.TrimSpace(cell.Text)
		if day == "" {
			continue
		}
		out = append(out, Candidate{Element: cell, Label: day + " " + month})
	}
	return out, nil
}

// genericDateElements is the drift fallback: any displayed, enabled element
// whose class hints at date/calendar semantics and whose text contains a
// digit.
func genericDateElements(ctx context.Context, d PageDriver) ([]Candidate, error) {
	els, err := d.Elements(ctx, selGenericDates)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, el := range els {
		text := strings.TrimSpace(el.Text)
		if !el.Visible || !el.Enabled || text == "" || !containsDigit(text) {
			continue
		}
		out = append(out, Candidate{Element: el, Label: text})
	}
	return out, nil
}

// collectCandidates walks the strategy list in order and returns the first
// non-empty result. A strategy error is portal drift, not a step failure,
// unless every strategy errors out.
func collectCandidates(ctx context.Context, d PageDriver, strategies []CandidateStrategy, log *zap.Logger) ([]Candidate, error) {
	var lastErr error
	failed := 0
	for _, s := range strategies {
		cands, err := s.Discover(ctx, d)
		if err != nil {
			log.Warn("Candidate strategy failed", zap.String("strategy", s.Name), zap.Error(err))
			lastErr = err
			failed++
			continue
		}
		if len(cands) > 0 {
			log.Info("Candidate strategy yielded dates",
				zap.String("strategy", s.Name), zap.Int("count", len(cands)))
			return cands, nil
		}
	}
	if failed == len(strategies) && lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
