// Package portal drives the visa portal's booking UI through a sequence of
// bounded steps: login, appointment initiation, slot discovery, slot
// selection, and completion. All portal selectors live in this package so a
// portal redesign touches nothing else.
package portal

import (
	"context"
	"time"
)

// Element is a transient handle to a live page element. The Ref is only
// valid while the originating page is still loaded; candidates must be acted
// on immediately or re-discovered.
type Element struct {
	Ref     string
	Text    string
	Class   string
	Visible bool
	Enabled bool
}

// PageDriver is the minimal browser surface the steps need. The live
// implementation is browser.Session; tests substitute a fake positioned on a
// synthetic page state.
type PageDriver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)

	// WaitVisible blocks until an element matching the CSS selector is
	// visible, or the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// WaitTextVisible blocks until any element containing the given visible
	// text appears, or the timeout elapses.
	WaitTextVisible(ctx context.Context, text string, timeout time.Duration) error
	WaitURLContains(ctx context.Context, fragment string, timeout time.Duration) error

	Click(ctx context.Context, selector string, timeout time.Duration) error
	// ClickByText clicks a button or link whose visible text contains the
	// given string.
	ClickByText(ctx context.Context, text string, timeout time.Duration) error
	SetValue(ctx context.Context, selector, value string, timeout time.Duration) error
	Text(ctx context.Context, selector string, timeout time.Duration) (string, error)

	PageSource(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)

	// Elements enumerates all elements matching the CSS selector, tagging
	// each with a ref usable by the element-level operations below.
	Elements(ctx context.Context, selector string) ([]Element, error)
	ClickElement(ctx context.Context, el Element) error
	// ScriptClick forces a script-driven click, used when a normal click is
	// intercepted or the element is not interactable.
	ScriptClick(ctx context.Context, el Element) error
	ScrollIntoView(ctx context.Context, el Element) error
}

// Sink receives diagnostic artifacts captured during a step. Implementations
// must tolerate being called mid-failure; artifact errors never fail a step.
type Sink interface {
	SaveScreenshot(step string, png []byte) (string, error)
	SaveMarkup(step string, markup string) (string, error)
}
