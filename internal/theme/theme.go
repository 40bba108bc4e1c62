// Package theme reads app-theme.json and generates the color design tokens
// stylesheet from it.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileName is the theme data file inside the data directory.
const FileName = "app-theme.json"

// CSSPath is where the generated stylesheet lives, relative to the source
// and output directories.
const CSSPath = "assets/css/design-tokens/colors.css"

// Default sidebar breakpoints in CSS pixels.
const (
	DefaultTabletBreakpoint  = 768
	DefaultDesktopBreakpoint = 1024
)

// Palette is an ordered set of color tokens. File order is kept so the
// generated CSS lists variables in the order they were written.
type Palette = orderedmap.OrderedMap[string, string]

// Theme is the decoded app-theme.json.
type Theme struct {
	Light   *Palette
	Dark    *Palette
	Neutral *Palette
	Sidebar Sidebar
}

// Sidebar carries the responsive sidebar settings passed to the browser.
type Sidebar struct {
	Breakpoints Breakpoints       `json:"breakpoints"`
	Defaults    map[string]string `json:"defaults"`
}

// Breakpoints are the device width thresholds: below Tablet is mobile,
// below Desktop is tablet.
type Breakpoints struct {
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
}

type document struct {
	Themes struct {
		Light *Palette `json:"light"`
		Dark  *Palette `json:"dark"`
	} `json:"themes"`
	Colors struct {
		Neutral *Palette `json:"neutral"`
	} `json:"colors"`
	Sidebar *Sidebar `json:"sidebar"`
}

// Load reads and decodes a theme file.
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes theme JSON. Both light and dark palettes are required;
// missing neutrals and sidebar settings fall back to defaults.
func Parse(data []byte) (*Theme, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing theme: %w", err)
	}
	if doc.Themes.Light == nil || doc.Themes.Light.Len() == 0 {
		return nil, errors.New("themes.light is required")
	}
	if doc.Themes.Dark == nil || doc.Themes.Dark.Len() == 0 {
		return nil, errors.New("themes.dark is required")
	}

	t := &Theme{
		Light:   doc.Themes.Light,
		Dark:    doc.Themes.Dark,
		Neutral: doc.Colors.Neutral,
		Sidebar: DefaultSidebar(),
	}
	if t.Neutral == nil {
		t.Neutral = orderedmap.New[string, string]()
	}
	if s := doc.Sidebar; s != nil {
		if s.Breakpoints.Tablet > 0 {
			t.Sidebar.Breakpoints.Tablet = s.Breakpoints.Tablet
		}
		if s.Breakpoints.Desktop > 0 {
			t.Sidebar.Breakpoints.Desktop = s.Breakpoints.Desktop
		}
		for device, state := range s.Defaults {
			t.Sidebar.Defaults[device] = state
		}
	}
	if t.Sidebar.Breakpoints.Desktop <= t.Sidebar.Breakpoints.Tablet {
		return nil, fmt.Errorf("sidebar.breakpoints: desktop (%d) must be greater than tablet (%d)",
			t.Sidebar.Breakpoints.Desktop, t.Sidebar.Breakpoints.Tablet)
	}
	return t, nil
}

// DefaultSidebar returns the sidebar settings used when app-theme.json
// omits them: hidden on mobile, visible on tablet and desktop.
func DefaultSidebar() Sidebar {
	return Sidebar{
		Breakpoints: Breakpoints{Tablet: DefaultTabletBreakpoint, Desktop: DefaultDesktopBreakpoint},
		Defaults: map[string]string{
			"mobile":  "hidden",
			"tablet":  "visible",
			"desktop": "visible",
		},
	}
}

// Keys returns the palette's token names in file order.
func Keys(p *Palette) []string {
	keys := make([]string, 0, p.Len())
	for pair := p.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
