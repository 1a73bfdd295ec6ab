package portal

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// StartBooking navigates into the booking flow and fills the cascading
// form: application center, visa category, subcategory, date of birth.
//
// Every sub-action is independently best-effort: a dropdown that cannot be
// found may already hold the desired value from a previous page state, so a
// failure logs a warning and the step proceeds. Consequently a nil return
// does not guarantee any field was actually set; only the booking form
// marker is load-bearing.
func (f *Flow) StartBooking(ctx context.Context) error {
	current, err := f.driver.CurrentURL(ctx)
	if err != nil || !strings.Contains(current, "dashboard") {
		f.log.Info("Navigating to dashboard")
		if err := f.driver.Navigate(ctx, f.cfg.Portal.DashboardURL); err != nil {
			return fmt.Errorf("navigating to dashboard: %w", err)
		}
		f.pause(ctx)
	}

	if err := f.driver.ClickByText(ctx, bookButtonText, waitShort); err != nil {
		// The control may be absent because the UI already advanced past it.
		f.log.Warn("Book-appointment button not found, navigating directly", zap.Error(err))
		if err := f.driver.Navigate(ctx, f.cfg.Portal.BookingURL); err != nil {
			return fmt.Errorf("navigating to booking page: %w", err)
		}
	} else {
		f.log.Info("Clicked book-appointment button")
	}

	if err := f.driver.WaitTextVisible(ctx, bookingFormMarker, waitBookingForm); err != nil {
		f.snapshot(ctx, "booking_form_timeout")
		return fmt.Errorf("booking form did not load: %w", err)
	}
	f.snapshot(ctx, "booking_page")
	f.log.Info("Booking form loaded")

	f.selectDropdown(ctx, "center", selCenterDropdown, f.cfg.Portal.Center, false)
	f.selectDropdown(ctx, "category", selCategoryDropdown, f.cfg.Portal.Category, false)
	f.selectDropdown(ctx, "subcategory", selSubcategoryDropdown, f.cfg.Portal.Subcategory, true)
	f.fillBirthDate(ctx)

	if err := f.driver.ClickByText(ctx, "Продолжить", waitShort); err != nil {
		f.log.Warn("Continue button not found or not clickable")
	} else {
		f.log.Info("Clicked continue")
		f.pause(ctx)
	}

	f.log.Info("Booking initiation sequence complete")
	return nil
}

// selectDropdown opens one cascading dropdown and picks the target option by
// visible text. When fallbackFirst is set and the target is absent, the
// first available option is taken instead. Best-effort throughout: the field
// may be pre-filled or not rendered at this stage.
func (f *Flow) selectDropdown(ctx context.Context, name, selector, target string, fallbackFirst bool) {
	log := f.log.With(zap.String("dropdown", name), zap.String("target", target))

	if err := f.driver.Click(ctx, selector, waitShort); err != nil {
		log.Warn("Dropdown not found or not clickable, skipping", zap.Error(err))
		return
	}
	f.pause(ctx)

	options, err := f.driver.Elements(ctx, selOptionSpans)
	if err != nil || len(options) == 0 {
		log.Warn("No options rendered for dropdown", zap.Error(err))
		return
	}

	for _, opt := range options {
		if strings.Contains(opt.Text, target) {
			if err := f.clickWithFallback(ctx, opt); err != nil {
				log.Warn("Failed to click target option", zap.Error(err))
				return
			}
			log.Info("Selected option", zap.String("text", strings.TrimSpace(opt.Text)))
			f.pause(ctx)
			return
		}
	}

	if fallbackFirst {
		all, err := f.driver.Elements(ctx, selOptions)
		if err == nil && len(all) > 0 {
			if err := f.clickWithFallback(ctx, all[0]); err == nil {
				log.Info("Target absent, selected first available option",
					zap.String("text", strings.TrimSpace(all[0].Text)))
				f.pause(ctx)
				return
			}
		}
	}
	log.Warn("Target option not present in dropdown")
}

// fillBirthDate fills the date-of-birth input from configuration.
// Best-effort: the field may be pre-filled or not required at this stage.
func (f *Flow) fillBirthDate(ctx context.Context) {
	birthDate := f.cfg.Applicant.BirthDate
	if birthDate == "" {
		return
	}
	if err := f.driver.SetValue(ctx, selBirthDateInput, birthDate, waitShort); err != nil {
		f.log.Warn("Date-of-birth field not found or not fillable", zap.Error(err))
		return
	}
	f.log.Info("Entered date of birth", zap.String("birth_date", birthDate))
	f.pause(ctx)
}
