package portal

import "time"

// Everything below mirrors the live portal DOM as last observed. None of it
// is guaranteed stable; treat a broken selector as portal drift, not a bug
// in the steps.
const (
	selEmailInput    = "#mat-input-0"
	selPasswordInput = "#mat-input-1"

	selCenterDropdown      = "mat-select[formcontrolname*='center']"
	selCategoryDropdown    = "mat-select[formcontrolname*='category']"
	selSubcategoryDropdown = "mat-select[formcontrolname*='subCategory']"
	selOptionSpans         = "mat-option span"
	selOptions             = "mat-option"
	selBirthDateInput      = "input[formcontrolname='dateOfBirth']"

	selCalendar      = ".mat-calendar-body, .calendar-container, mat-calendar, .date-selection"
	selCalendarCells = ".mat-calendar-body-cell:not(.mat-calendar-body-disabled), .date-available, td.selectable:not(.disabled)"
	selMonthLabel    = ".mat-calendar-period-button, .current-month"
	selGenericDates  = "[class*='date']:not([class*='disabled']), [class*='calendar']:not([class*='disabled'])"

	selTimeSlotUI = ".time-slot, .time-selection, [class*='time-slot']"
	selTimeSlots  = ".time-slot:not(.disabled), [class*='time-slot']:not([class*='disabled']), button[class*='time']"

	bookingFormMarker = "Выберите свой Центр приложений"
	bookButtonText    = "Записаться на прием"
)

// Button texts are tried in order; the portal serves either Russian or
// English depending on session state.
var (
	loginButtonTexts = []string{"Войти", "Login"}
	confirmTexts     = []string{"Подтвердить", "Продолжить", "Далее"}
	finalizeTexts    = []string{"Завершить", "Подтвердить бронирование", "Финализировать"}
)

// Page-text markers used to detect page states.
var (
	noSlotsMarkers = []string{
		"нет доступных слотов",
		"Приносим извинения",
		"Места для регистрации",
	}
	confirmationMarkers = []string{
		"Подтверждение",
		"Ваше бронирование",
		"Записи на прием",
	}
	successMarkers = []string{
		"успешно забронирован",
		"Ваша запись подтверждена",
		"Подтверждение",
	}
)

// Bounded waits gating every UI-dependent read. There is no unbounded
// blocking wait anywhere in the flow.
const (
	waitLoginForm     = 15 * time.Second
	waitLoginRedirect = 20 * time.Second
	waitBookingForm   = 15 * time.Second
	waitCalendar      = 5 * time.Second
	waitShort         = 5 * time.Second
)
