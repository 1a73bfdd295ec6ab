package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SelectDate clicks a discovered date cell and drives the follow-up time
// slot and confirmation UI. When preferred matches no candidate's text, the
// first candidate in document order is taken.
//
// The page may have changed since discovery, so the no-slots marker is
// re-checked and candidates are re-enumerated rather than reused.
func (f *Flow) SelectDate(ctx context.Context, preferred string) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Date selection panicked", zap.Any("panic", r))
			f.snapshot(ctx, "date_selection_panic")
			msg, err = "", fmt.Errorf("date selection panicked: %v", r)
		}
	}()

	if marker, ok := f.pageMarker(ctx, noSlotsMarkers); ok {
		f.log.Info("No-slots marker present at selection time", zap.String("marker", marker))
		f.snapshot(ctx, "no_slots_for_selection")
		return "", fmt.Errorf("no slots available for booking: %s", marker)
	}

	f.snapshot(ctx, "calendar_search")
	candidates, cerr := f.collectCandidates(ctx)
	if cerr != nil {
		return "", fmt.Errorf("enumerating calendar dates: %w", cerr)
	}
	if len(candidates) == 0 {
		return "", errors.New("calendar has no selectable dates")
	}

	chosen := candidates[0]
	if preferred != "" {
		matched := false
		for _, c := range candidates {
			if strings.Contains(c.Label, preferred) || strings.Contains(c.Element.Text, preferred) {
				chosen = c
				matched = true
				f.log.Info("Matched preferred date", zap.String("date", c.Label))
				break
			}
		}
		if !matched {
			f.log.Info("Preferred date not available, falling back to first candidate",
				zap.String("preferred", preferred), zap.String("fallback", chosen.Label))
		}
	}

	if err := f.driver.ScrollIntoView(ctx, chosen.Element); err != nil {
		f.log.Debug("Scroll into view failed", zap.Error(err))
	}
	f.pause(ctx)
	f.snapshot(ctx, "before_date_click")

	if err := f.clickWithFallback(ctx, chosen.Element); err != nil {
		return "", fmt.Errorf("failed to select date %q: %w", chosen.Label, err)
	}
	f.log.Info("Clicked date", zap.String("date", chosen.Label))
	f.pause(ctx)
	f.snapshot(ctx, "after_date_click")

	// A time-slot picker may or may not follow the date click.
	if err := f.driver.WaitVisible(ctx, selTimeSlotUI, waitShort); err == nil {
		return f.selectTimeSlot(ctx, chosen.Label)
	}

	f.log.Info("No time-slot picker appeared; confirming date directly")
	if err := f.clickAnyByText(ctx, confirmTexts); err != nil {
		f.log.Warn("Confirmation control not found after date selection")
		return fmt.Sprintf("selected date %s; confirmation control not found", chosen.Label), nil
	}
	f.pause(ctx)
	f.snapshot(ctx, "after_date_confirm")
	return fmt.Sprintf("selected date %s", chosen.Label), nil
}

// selectTimeSlot picks the first enabled slot in the time picker and drives
// the confirm control.
func (f *Flow) selectTimeSlot(ctx context.Context, date string) (string, error) {
	slots, err := f.driver.Elements(ctx, selTimeSlots)
	if err != nil || len(slots) == 0 {
		f.log.Warn("Time picker present but no enabled slots", zap.Error(err))
		return "", errors.New("no time slots available for the selected date")
	}

	slot := slots[0]
	slotText := strings.TrimSpace(slot.Text)

	if err := f.driver.ScrollIntoView(ctx, slot); err != nil {
		f.log.Debug("Scroll into view failed", zap.Error(err))
	}
	f.pause(ctx)
	f.snapshot(ctx, "before_time_click")

	if err := f.clickWithFallback(ctx, slot); err != nil {
		return "", fmt.Errorf("failed to select time slot %q: %w", slotText, err)
	}
	f.log.Info("Selected time slot", zap.String("time", slotText))
	f.pause(ctx)
	f.snapshot(ctx, "after_time_click")

	if err := f.clickAnyByText(ctx, confirmTexts[:2]); err != nil {
		f.log.Warn("Confirmation control not found after time selection")
		return fmt.Sprintf("selected date %s at %s; confirmation control not found", date, slotText), nil
	}
	f.pause(ctx)
	f.snapshot(ctx, "after_confirmation")
	return fmt.Sprintf("selected date %s at %s", date, slotText), nil
}

// CompleteBooking drives the final confirmation screen. Success is detected
// by page-text heuristics; clicking the finalize control without an explicit
// success marker still counts as submitted.
func (f *Flow) CompleteBooking(ctx context.Context) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Booking completion panicked", zap.Any("panic", r))
			f.snapshot(ctx, "booking_completion_panic")
			msg, err = "", fmt.Errorf("booking completion panicked: %v", r)
		}
	}()

	f.snapshot(ctx, "booking_completion_start")

	if marker, ok := f.pageMarker(ctx, confirmationMarkers); ok {
		f.log.Info("Confirmation page marker found", zap.String("marker", marker))
	} else {
		f.log.Warn("No confirmation page markers; advancing best-effort")
		if cerr := f.clickAnyByText(ctx, confirmTexts); cerr != nil {
			f.log.Warn("No continue control found either")
		} else {
			f.pause(ctx)
			f.snapshot(ctx, "after_continue_click")
		}
	}

	finalized := false
	if err := f.clickAnyByText(ctx, finalizeTexts); err == nil {
		finalized = true
		f.pause(ctx)
		f.snapshot(ctx, "after_final_button")
	} else {
		f.log.Warn("Finalize control not found")
	}

	if marker, ok := f.pageMarker(ctx, successMarkers); ok {
		f.log.Info("Booking success marker found", zap.String("marker", marker))
		f.snapshot(ctx, "booking_completion_final")
		return fmt.Sprintf("booking confirmed: %s", marker), nil
	}
	if finalized {
		return "submitted without explicit confirmation", nil
	}
	return "", errors.New("could not locate a finalize control to complete the booking")
}
