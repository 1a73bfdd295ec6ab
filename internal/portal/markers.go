package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// visibleText extracts the rendered text of a page from its raw markup.
// Marker scans run against visible text so markup noise (attribute values,
// script bodies embedded in data URIs) cannot produce false positives.
func visibleText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// Fall back to the raw markup; a false positive beats a missed
		// marker here.
		return markup
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

// findMarker returns the first marker present in the page's visible text.
func findMarker(markup string, markers []string) (string, bool) {
	text := visibleText(markup)
	for _, m := range markers {
		if strings.Contains(text, m) {
			return m, true
		}
	}
	return "", false
}

// hasCaptchaMarker scans the raw markup, not just visible text: the portal's
// bot defense embeds recaptcha as script includes and hidden widgets that
// never render text.
func hasCaptchaMarker(markup string) bool {
	lower := strings.ToLower(markup)
	return strings.Contains(lower, "captcha") || strings.Contains(lower, "recaptcha")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
