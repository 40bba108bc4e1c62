// Package browsercheck drives a headless Chrome through a running site and
// checks the responsive sidebar, the tag filter and the theme toggle.
package browsercheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrChecksFailed is returned when at least one browser check fails.
var ErrChecksFailed = errors.New("browser checks failed")

// Viewport is one emulated screen size.
type Viewport struct {
	Name   string
	Width  int
	Height int
}

// Viewports are the sizes every site is checked at.
var Viewports = []Viewport{
	{Name: "mobile", Width: 375, Height: 667},
	{Name: "tablet", Width: 768, Height: 1024},
	{Name: "desktop", Width: 1280, Height: 800},
}

// Result is the outcome of one named check.
type Result struct {
	Viewport string
	Name     string
	Err      error
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Report lists every check in the order it ran.
type Report struct {
	URL     string
	Results []Result
}

// Failed counts the failed checks.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

// Err returns ErrChecksFailed wrapped with the failure count, or nil.
func (r *Report) Err() error {
	if n := r.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, n, len(r.Results))
	}
	return nil
}

// Print writes one line per check and a summary.
func Print(w io.Writer, r *Report) {
	fmt.Fprintf(w, "Browser checks against %s\n\n", r.URL)
	for _, res := range r.Results {
		if res.Passed() {
			fmt.Fprintf(w, "✓ %s: %s\n", res.Viewport, res.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %s\n    %v\n", res.Viewport, res.Name, res.Err)
	}
	fmt.Fprintf(w, "\n%d passed, %d failed\n", len(r.Results)-r.Failed(), r.Failed())
}

// Checker runs the checks against URL.
type Checker struct {
	URL string
	// ControlURL connects to an already running browser instead of
	// launching one.
	ControlURL string
	Headless   bool
	// Settle is how long to wait after load and after each interaction
	// for scripts and transitions to finish.
	Settle  time.Duration
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewChecker returns a headless Checker for url.
func NewChecker(url string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		URL:      url,
		Headless: true,
		Settle:   500 * time.Millisecond,
		Timeout:  30 * time.Second,
		Logger:   logger,
	}
}

// Run launches or connects to the browser and runs every check at every
// viewport. The returned error covers browser setup only; check failures
// are in the report.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	controlURL := c.ControlURL
	if controlURL == "" {
		u, err := launcher.New().Headless(c.Headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer browser.Close()

	report := &Report{URL: c.URL}
	for _, vp := range Viewports {
		results, err := c.runViewport(browser, vp)
		if err != nil {
			return nil, fmt.Errorf("%s viewport: %w", vp.Name, err)
		}
		report.Results = append(report.Results, results...)
	}
	return report, nil
}

// runViewport loads the site in a fresh incognito context so stored
// sidebar and theme preferences from earlier viewports do not leak in.
func (c *Checker) runViewport(browser *rod.Browser, vp Viewport) ([]Result, error) {
	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer incognito.Close()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	page = page.Timeout(c.Timeout)
	if err := page.Navigate(c.URL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	c.settle()
	c.Logger.Debug("page loaded", zap.String("viewport", vp.Name), zap.String("url", c.URL))

	var results []Result
	run := func(name string, fn func() error) {
		results = append(results, Result{Viewport: vp.Name, Name: name, Err: fn()})
	}

	if vp.Name == "mobile" {
		run("sidebar hidden by default", func() error { return c.expectSidebar(page, vp.Name, false) })
		run("toggle opens sidebar with overlay", func() error {
			if err := clickVisible(page, "[data-sidebar-toggle]"); err != nil {
				return err
			}
			c.settle()
			s, err := sidebarState(page)
			if err != nil {
				return err
			}
			if !s.Visible || !s.OverlayVisible {
				return fmt.Errorf("after toggle: sidebar visible=%t overlay visible=%t", s.Visible, s.OverlayVisible)
			}
			return s.consistent()
		})
		run("escape closes sidebar", func() error {
			if err := page.Keyboard.Press(input.Escape); err != nil {
				return err
			}
			c.settle()
			return c.expectSidebar(page, vp.Name, false)
		})
	} else {
		run("sidebar visible by default", func() error { return c.expectSidebar(page, vp.Name, true) })
	}

	run("filter buttons update aria-pressed", func() error { return c.checkFilter(page) })
	run("theme toggle switches data-theme", func() error { return c.checkTheme(page) })
	return results, nil
}

func (c *Checker) settle() {
	if c.Settle > 0 {
		time.Sleep(c.Settle)
	}
}

type sidebar struct {
	Found          bool     `json:"found"`
	Visible        bool     `json:"visible"`
	AriaHidden     string   `json:"ariaHidden"`
	DeviceType     string   `json:"deviceType"`
	OverlayVisible bool     `json:"overlayVisible"`
	Expanded       []string `json:"expanded"`
}

// consistent checks that the ARIA attributes agree with the visible class.
func (s sidebar) consistent() error {
	if want := fmt.Sprint(!s.Visible); s.AriaHidden != want {
		return fmt.Errorf("aria-hidden=%q, want %q", s.AriaHidden, want)
	}
	for i, e := range s.Expanded {
		if want := fmt.Sprint(s.Visible); e != want {
			return fmt.Errorf("toggle %d aria-expanded=%q, want %q", i, e, want)
		}
	}
	return nil
}

const sidebarJS = `() => {
	const s = document.querySelector('[data-sidebar]');
	const o = document.querySelector('[data-sidebar-overlay]');
	const toggles = Array.from(document.querySelectorAll('[data-sidebar-toggle]'));
	return {
		found: !!s,
		visible: !!s && s.classList.contains('sidebar--visible'),
		ariaHidden: s ? s.getAttribute('aria-hidden') || '' : '',
		deviceType: s ? s.getAttribute('data-device-type') || '' : '',
		overlayVisible: !!o && o.classList.contains('sidebar-overlay--visible'),
		expanded: toggles.map(t => t.getAttribute('aria-expanded') || '')
	};
}`

func sidebarState(page *rod.Page) (sidebar, error) {
	var s sidebar
	if err := eval(page, sidebarJS, &s); err != nil {
		return s, err
	}
	if !s.Found {
		return s, errors.New("no [data-sidebar] element")
	}
	return s, nil
}

func (c *Checker) expectSidebar(page *rod.Page, device string, visible bool) error {
	s, err := sidebarState(page)
	if err != nil {
		return err
	}
	if s.DeviceType != device {
		return fmt.Errorf("data-device-type=%q, want %q", s.DeviceType, device)
	}
	if s.Visible != visible {
		return fmt.Errorf("sidebar visible=%t, want %t", s.Visible, visible)
	}
	if s.OverlayVisible && !visible {
		return errors.New("overlay visible while sidebar is hidden")
	}
	return s.consistent()
}

const filterJS = `() => Array.from(document.querySelectorAll('.filter-button[data-filter]'))
	.map(b => ({filter: b.getAttribute('data-filter'), pressed: b.getAttribute('aria-pressed')}))`

type filterButton struct {
	Filter  string `json:"filter"`
	Pressed string `json:"pressed"`
}

// checkFilter selects the second filter and expects it to be the only
// pressed button. A page without tags passes trivially.
func (c *Checker) checkFilter(page *rod.Page) error {
	var buttons []filterButton
	if err := eval(page, filterJS, &buttons); err != nil {
		return err
	}
	if len(buttons) < 2 {
		return nil
	}
	if buttons[0].Pressed != "true" {
		return fmt.Errorf("initial filter %q aria-pressed=%q", buttons[0].Filter, buttons[0].Pressed)
	}

	target := buttons[1].Filter
	if err := clickVisible(page, fmt.Sprintf(`.filter-button[data-filter=%q]`, target)); err != nil {
		return err
	}
	c.settle()

	if err := eval(page, filterJS, &buttons); err != nil {
		return err
	}
	for _, b := range buttons {
		want := fmt.Sprint(b.Filter == target)
		if b.Pressed != want {
			return fmt.Errorf("after selecting %q: %q aria-pressed=%q", target, b.Filter, b.Pressed)
		}
	}
	return nil
}

const themeJS = `() => document.documentElement.getAttribute('data-theme') || ''`

func (c *Checker) checkTheme(page *rod.Page) error {
	var before, after string
	if err := eval(page, themeJS, &before); err != nil {
		return err
	}
	if err := clickVisible(page, "[data-theme-toggle]"); err != nil {
		return err
	}
	c.settle()
	if err := eval(page, themeJS, &after); err != nil {
		return err
	}
	if after == "" || after == before {
		return fmt.Errorf("data-theme %q -> %q", before, after)
	}
	return nil
}

// clickVisible clicks the first element matching selector that is visible.
func clickVisible(page *rod.Page, selector string) error {
	els, err := page.Elements(selector)
	if err != nil {
		return err
	}
	for _, el := range els {
		if ok, err := el.Visible(); err == nil && ok {
			return el.Click(proto.InputMouseButtonLeft, 1)
		}
	}
	return fmt.Errorf("no visible element matches %s", selector)
}

func eval(page *rod.Page, js string, out any) error {
	res, err := page.Evaluate(&rod.EvalOptions{JS: js, ByValue: true})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return json.Unmarshal(raw, out)
}
