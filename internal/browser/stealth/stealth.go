// Package stealth hides the most common automation fingerprints from the
// page's scripts. Flag-level evasion lives in the session manager's
// allocator options; this package covers what only script injection can
// reach, chiefly navigator.webdriver.
package stealth

import (
	"context"
	_ "embed"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// EvasionsJS is the fingerprint-evasion script injected into every document.
//
//go:embed evasions.js
var EvasionsJS string

// Apply returns an action that installs the evasions on every new document
// and patches the current one. Best-effort by contract: the caller treats a
// failure as a degraded session, not a fatal one.
func Apply() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if _, err := page.AddScriptToEvaluateOnNewDocument(EvasionsJS).Do(ctx); err != nil {
			return err
		}
		// The first document is already loaded at this point, so the
		// on-new-document hook missed it.
		return chromedp.Evaluate(EvasionsJS, nil).Do(ctx)
	})
}
