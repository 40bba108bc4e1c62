package site

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/theme"
)

// SiteData is site.json.
type SiteData struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Language    string `json:"language"`
}

// NavLink is one navigation entry.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon,omitempty"`
}

// Navigation is navigation.json.
type Navigation struct {
	Main   []NavLink `json:"main"`
	Social []NavLink `json:"social"`
}

// Variants is component-variants.json: component name to variant name to
// CSS classes.
type Variants map[string]map[string]string

// Class returns the classes of a component variant, falling back to the
// component's default variant and then to the component name.
func (v Variants) Class(component, variant string) string {
	if c, ok := v[component][variant]; ok {
		return c
	}
	if c, ok := v[component]["default"]; ok {
		return c
	}
	return component
}

// Data is the global template data read from the data directory.
type Data struct {
	Site       SiteData
	Navigation Navigation
	Variants   Variants
	Theme      *theme.Theme
}

// LoadData reads the data files. Missing files leave their zero value;
// the site title falls back to the configured one. A missing app-theme.json
// keeps the default sidebar settings but no palette.
func LoadData(cfg *config.Config) (*Data, error) {
	d := &Data{}
	if err := readJSON(cfg.DataPath("site.json"), &d.Site); err != nil {
		return nil, err
	}
	if err := readJSON(cfg.DataPath("navigation.json"), &d.Navigation); err != nil {
		return nil, err
	}
	if err := readJSON(cfg.DataPath("component-variants.json"), &d.Variants); err != nil {
		return nil, err
	}
	if d.Site.Title == "" {
		d.Site.Title = cfg.SiteTitle
	}

	themePath := cfg.DataPath(theme.FileName)
	if _, err := os.Stat(themePath); err == nil {
		t, err := theme.Load(themePath)
		if err != nil {
			return nil, err
		}
		d.Theme = t
	}
	return d, nil
}

// Sidebar returns the sidebar settings of the theme, or the defaults.
func (d *Data) Sidebar() theme.Sidebar {
	if d.Theme == nil {
		return theme.DefaultSidebar()
	}
	return d.Theme.Sidebar
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
