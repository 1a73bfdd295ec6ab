package portal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DiscoverSlots inspects the current page for bookable dates.
//
// A "no slots" marker and a calendar that never renders both produce the
// explicit NoSlots result. The latter could equally be portal drift hiding
// real availability; the two cases are deliberately not distinguished, only
// logged differently.
func (f *Flow) DiscoverSlots(ctx context.Context) (res SlotsResult) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("Slot discovery panicked", zap.Any("panic", r))
			f.snapshot(ctx, "discovery_panic")
			res = FailedSlots(fmt.Sprintf("slot discovery panicked: %v", r))
		}
	}()

	if marker, ok := f.pageMarker(ctx, noSlotsMarkers); ok {
		f.log.Info("No-slots marker present", zap.String("marker", marker))
		f.snapshot(ctx, "no_slots_available")
		return NoSlots()
	}

	if err := f.driver.WaitVisible(ctx, selCalendar, waitCalendar); err != nil {
		f.log.Warn("Calendar did not appear within timeout, treating as no slots", zap.Error(err))
		f.snapshot(ctx, "no_calendar")
		return NoSlots()
	}
	f.log.Info("Calendar found")
	f.snapshot(ctx, "calendar")

	candidates, err := f.collectCandidates(ctx)
	if err != nil {
		f.snapshot(ctx, "calendar_error")
		return FailedSlots(fmt.Sprintf("enumerating calendar dates: %v", err))
	}
	if len(candidates) == 0 {
		f.log.Info("Calendar present but no selectable dates")
		return NoSlots()
	}

	dates := make([]string, 0, len(candidates))
	for _, c := range candidates {
		dates = append(dates, c.Label)
	}
	f.log.Info("Discovered available dates", zap.Int("count", len(dates)))
	f.snapshot(ctx, "available_dates")
	return FoundSlots(dates)
}
