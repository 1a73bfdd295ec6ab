package portal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// fakeDriver is an in-memory PageDriver positioned on a synthetic page
// state. Tests mutate the maps to model what the portal is serving.
type fakeDriver struct {
	currentURL string
	source     string

	visible     map[string]bool
	textVisible map[string]bool
	texts       map[string]string
	elements    map[string][]Element
	elementsErr map[string]error

	clickableTexts map[string]bool
	clickErrRefs   map[string]bool
	clickTextHook  func(text string)

	navigated    []string
	values       map[string]string
	clickedTexts []string
	clickedRefs  []string
	scriptRefs   []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		visible:        make(map[string]bool),
		textVisible:    make(map[string]bool),
		texts:          make(map[string]string),
		elements:       make(map[string][]Element),
		elementsErr:    make(map[string]error),
		clickableTexts: make(map[string]bool),
		clickErrRefs:   make(map[string]bool),
		values:         make(map[string]string),
	}
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.navigated = append(d.navigated, url)
	d.currentURL = url
	return nil
}

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	return d.currentURL, nil
}

func (d *fakeDriver) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if d.visible[selector] {
		return nil
	}
	return fmt.Errorf("element %q not visible", selector)
}

func (d *fakeDriver) WaitTextVisible(ctx context.Context, text string, timeout time.Duration) error {
	if d.textVisible[text] {
		return nil
	}
	return fmt.Errorf("text %q not visible", text)
}

func (d *fakeDriver) WaitURLContains(ctx context.Context, fragment string, timeout time.Duration) error {
	if strings.Contains(d.currentURL, fragment) {
		return nil
	}
	return fmt.Errorf("url %q does not contain %q", d.currentURL, fragment)
}

func (d *fakeDriver) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if !d.visible[selector] {
		return fmt.Errorf("element %q not clickable", selector)
	}
	return nil
}

func (d *fakeDriver) ClickByText(ctx context.Context, text string, timeout time.Duration) error {
	if !d.clickableTexts[text] {
		return fmt.Errorf("no control with text %q", text)
	}
	d.clickedTexts = append(d.clickedTexts, text)
	if d.clickTextHook != nil {
		d.clickTextHook(text)
	}
	return nil
}

func (d *fakeDriver) SetValue(ctx context.Context, selector, value string, timeout time.Duration) error {
	if !d.visible[selector] {
		return fmt.Errorf("input %q not found", selector)
	}
	d.values[selector] = value
	return nil
}

func (d *fakeDriver) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	if t, ok := d.texts[selector]; ok {
		return t, nil
	}
	return "", fmt.Errorf("no element for %q", selector)
}

func (d *fakeDriver) PageSource(ctx context.Context) (string, error) {
	return d.source, nil
}

func (d *fakeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (d *fakeDriver) Elements(ctx context.Context, selector string) ([]Element, error) {
	if err, ok := d.elementsErr[selector]; ok {
		return nil, err
	}
	return d.elements[selector], nil
}

func (d *fakeDriver) ClickElement(ctx context.Context, el Element) error {
	if d.clickErrRefs[el.Ref] {
		return fmt.Errorf("click intercepted on %q", el.Ref)
	}
	d.clickedRefs = append(d.clickedRefs, el.Ref)
	return nil
}

func (d *fakeDriver) ScriptClick(ctx context.Context, el Element) error {
	d.scriptRefs = append(d.scriptRefs, el.Ref)
	return nil
}

func (d *fakeDriver) ScrollIntoView(ctx context.Context, el Element) error {
	return nil
}
