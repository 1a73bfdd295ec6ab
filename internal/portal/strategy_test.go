package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalendarCellsJoinsMonthLabel(t *testing.T) {
	d := newFakeDriver()
	d.elements[selCalendarCells] = []Element{
		{Ref: "c1", Text: " 12 ", Visible: true, Enabled: true},
		{Ref: "c2", Text: "", Visible: true, Enabled: true},
		{Ref: "c3", Text: "20", Visible: true, Enabled: true},
	}
	d.texts[selMonthLabel] = "Июнь 2025"

	cands, err := calendarCells(context.Background(), d, fixedClock)
	require.NoError(t, err)
	require.Len(t, cands, 2, "cells without text are skipped")
	assert.Equal(t, "12 Июнь 2025", cands[0].Label)
	assert.Equal(t, "20 Июнь 2025", cands[1].Label)
}

func TestGenericDateElementsFiltering(t *testing.T) {
	d := newFakeDriver()
	d.elements[selGenericDates] = []Element{
		{Ref: "g1", Text: "14 июня", Visible: true, Enabled: true},
		{Ref: "g2", Text: "15 июня", Visible: false, Enabled: true},
		{Ref: "g3", Text: "16 июня", Visible: true, Enabled: false},
		{Ref: "g4", Text: "июнь", Visible: true, Enabled: true},
	}

	cands, err := genericDateElements(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, cands, 1, "hidden, disabled and digit-free elements are skipped")
	assert.Equal(t, "14 июня", cands[0].Label)
}

func TestCollectCandidatesFirstNonEmptyWins(t *testing.T) {
	first := CandidateStrategy{
		Name: "empty",
		Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) {
			return nil, nil
		},
	}
	second := CandidateStrategy{
		Name: "hit",
		Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) {
			return []Candidate{{Label: "12"}}, nil
		},
	}

	cands, err := collectCandidates(context.Background(), newFakeDriver(),
		[]CandidateStrategy{first, second}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "12", cands[0].Label)
}

func TestCollectCandidatesToleratesPartialErrors(t *testing.T) {
	broken := CandidateStrategy{
		Name: "broken",
		Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) {
			return nil, errors.New("stale ref")
		},
	}
	empty := CandidateStrategy{
		Name: "empty",
		Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) {
			return nil, nil
		},
	}

	cands, err := collectCandidates(context.Background(), newFakeDriver(),
		[]CandidateStrategy{broken, empty}, zap.NewNop())
	assert.NoError(t, err, "one working strategy is enough, even when empty")
	assert.Empty(t, cands)
}

func TestCollectCandidatesAllErrored(t *testing.T) {
	broken := func(name string) CandidateStrategy {
		return CandidateStrategy{
			Name: name,
			Discover: func(ctx context.Context, d PageDriver) ([]Candidate, error) {
				return nil, errors.New(name + " failed")
			},
		}
	}

	_, err := collectCandidates(context.Background(), newFakeDriver(),
		[]CandidateStrategy{broken("a"), broken("b")}, zap.NewNop())
	assert.Error(t, err)
}
