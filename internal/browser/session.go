package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/portal"
)

// Default bounds for operations whose callers don't pass one.
const (
	defaultNavTimeout = 30 * time.Second
	defaultOpTimeout  = 10 * time.Second
	urlPollInterval   = 250 * time.Millisecond
)

// Session is one live browser process plus its isolated profile directory,
// exclusively owned by the step sequence driving it. It implements
// portal.PageDriver.
type Session struct {
	id          string
	profileDir  string
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	log         *zap.Logger
	releaseOnce sync.Once
}

var _ portal.PageDriver = (*Session)(nil)

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// ProfileDir returns the session's profile directory path.
func (s *Session) ProfileDir() string { return s.profileDir }

// run executes chromedp actions against this session, bounded by the given
// timeout and cancelled early if the caller's context ends.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if timeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, timeout)
		defer tcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given URL and waits for the document body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.Debug("Navigate", zap.String("url", url))
	return s.run(ctx, defaultNavTimeout,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	)
}

// CurrentURL returns the page's current location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var u string
	err := s.run(ctx, defaultOpTimeout, chromedp.Location(&u))
	return u, err
}

// WaitVisible blocks until the selector matches a visible element.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// WaitTextVisible blocks until any element containing the text is visible.
func (s *Session) WaitTextVisible(ctx context.Context, text string, timeout time.Duration) error {
	xpath := fmt.Sprintf(`//*[contains(normalize-space(.), '%s')]`, text)
	return s.run(ctx, timeout, chromedp.WaitVisible(xpath, chromedp.BySearch))
}

// WaitURLContains polls the location until it contains the fragment.
func (s *Session) WaitURLContains(ctx context.Context, fragment string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		u, err := s.CurrentURL(ctx)
		if err == nil && strings.Contains(u, fragment) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("url did not contain %q within %s (last: %q)", fragment, timeout, u)
		}
		select {
		case <-time.After(urlPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Click waits for the selector and clicks it.
func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// ClickByText clicks the first button or link whose visible text contains
// the given string.
func (s *Session) ClickByText(ctx context.Context, text string, timeout time.Duration) error {
	xpath := fmt.Sprintf(
		`(//button[contains(normalize-space(.), '%[1]s')] | //a[contains(normalize-space(.), '%[1]s')])[1]`, text)
	return s.run(ctx, timeout,
		chromedp.WaitVisible(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch),
	)
}

// SetValue clears the input and types the value into it.
func (s *Session) SetValue(ctx context.Context, selector, value string, timeout time.Duration) error {
	return s.run(ctx, timeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// Text returns the visible text of the first element matching the selector.
func (s *Session) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	var t string
	err := s.run(ctx, timeout, chromedp.Text(selector, &t, chromedp.ByQuery))
	return t, err
}

// PageSource returns the page's current outer HTML.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, defaultOpTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Screenshot captures the visible viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, defaultOpTimeout, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

// elementInfo mirrors the JSON emitted by collectScript.
type elementInfo struct {
	Ref     string `json:"ref"`
	Text    string `json:"text"`
	Class   string `json:"class"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
}

// collectScript enumerates elements matching a selector and tags each with
// a data-dv-ref attribute so later element-level operations have a stable
// handle into the live page.
func collectScript(selector string) string {
	return fmt.Sprintf(`(() => {
	if (!window.__dvRefSeq) { window.__dvRefSeq = 0; }
	const out = [];
	document.querySelectorAll(%s).forEach((el) => {
		let ref = el.getAttribute('data-dv-ref');
		if (!ref) { ref = String(++window.__dvRefSeq); el.setAttribute('data-dv-ref', ref); }
		const style = window.getComputedStyle(el);
		const visible = el.offsetParent !== null && style.visibility !== 'hidden' && style.display !== 'none';
		const enabled = !el.disabled && el.getAttribute('aria-disabled') !== 'true';
		out.push({
			ref: ref,
			text: (el.innerText || el.textContent || '').trim(),
			class: el.getAttribute('class') || '',
			visible: visible,
			enabled: enabled,
		});
	});
	return out;
})()`, strconv.Quote(selector))
}

// Elements enumerates all elements matching the CSS selector.
func (s *Session) Elements(ctx context.Context, selector string) ([]portal.Element, error) {
	var infos []elementInfo
	if err := s.run(ctx, defaultOpTimeout, chromedp.Evaluate(collectScript(selector), &infos)); err != nil {
		return nil, fmt.Errorf("enumerating %q: %w", selector, err)
	}
	els := make([]portal.Element, 0, len(infos))
	for _, info := range infos {
		els = append(els, portal.Element{
			Ref:     info.Ref,
			Text:    info.Text,
			Class:   info.Class,
			Visible: info.Visible,
			Enabled: info.Enabled,
		})
	}
	return els, nil
}

func refSelector(el portal.Element) string {
	return fmt.Sprintf(`[data-dv-ref=%s]`, strconv.Quote(el.Ref))
}

// ClickElement clicks a previously enumerated element.
func (s *Session) ClickElement(ctx context.Context, el portal.Element) error {
	return s.run(ctx, defaultOpTimeout, chromedp.Click(refSelector(el), chromedp.ByQuery))
}

// ScriptClick forces a script-driven click on a previously enumerated
// element, bypassing hit testing.
func (s *Session) ScriptClick(ctx context.Context, el portal.Element) error {
	script := fmt.Sprintf(`document.querySelector(%s).click()`, strconv.Quote(refSelector(el)))
	return s.run(ctx, defaultOpTimeout, chromedp.Evaluate(script, nil))
}

// ScrollIntoView scrolls a previously enumerated element into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, el portal.Element) error {
	script := fmt.Sprintf(`document.querySelector(%s).scrollIntoView(true)`, strconv.Quote(refSelector(el)))
	return s.run(ctx, defaultOpTimeout, chromedp.Evaluate(script, nil))
}
