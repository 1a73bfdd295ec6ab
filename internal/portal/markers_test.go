package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMarkerInVisibleText(t *testing.T) {
	markup := `<html><body><div>К сожалению, нет доступных слотов</div></body></html>`
	marker, ok := findMarker(markup, noSlotsMarkers)
	assert.True(t, ok)
	assert.Equal(t, "нет доступных слотов", marker)
}

func TestFindMarkerIgnoresScriptBodies(t *testing.T) {
	// Markers inside scripts are not rendered to the user and must not
	// flip the page state.
	markup := `<html><body>
		<script>var msg = "нет доступных слотов";</script>
		<div>Выберите дату</div>
	</body></html>`
	_, ok := findMarker(markup, noSlotsMarkers)
	assert.False(t, ok)
}

func TestFindMarkerAbsent(t *testing.T) {
	_, ok := findMarker(`<html><body>Календарь</body></html>`, noSlotsMarkers)
	assert.False(t, ok)
}

func TestCaptchaMarkerScansRawMarkup(t *testing.T) {
	assert.True(t, hasCaptchaMarker(`<script src="https://www.google.com/recaptcha/api.js"></script>`))
	assert.True(t, hasCaptchaMarker(`<div class="CAPTCHA-widget"></div>`))
	assert.False(t, hasCaptchaMarker(`<html><body>Войти</body></html>`))
}

func TestContainsDigit(t *testing.T) {
	assert.True(t, containsDigit("12 Май"))
	assert.False(t, containsDigit("Май"))
	assert.False(t, containsDigit(""))
}

func TestSlotsResultStates(t *testing.T) {
	found := FoundSlots([]string{"12"})
	assert.True(t, found.Found())
	assert.False(t, found.None())
	assert.False(t, found.Failed())

	none := NoSlots()
	assert.True(t, none.None())
	assert.Empty(t, none.Dates)

	failed := FailedSlots("portal drift")
	assert.True(t, failed.Failed())
	assert.Equal(t, "portal drift", failed.Reason)
}
