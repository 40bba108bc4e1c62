package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Layout names of the built-in templates.
const (
	LayoutHome = "home"
	LayoutItem = "item"
	LayoutPage = "page"
)

// loadTemplates parses the embedded layouts, then every *.html file of
// includesDir. An include that defines an existing template name replaces
// the built-in one; a file without {{define}} is registered under its base
// name without extension.
func loadTemplates(includesDir string, funcs template.FuncMap) (*template.Template, error) {
	tmpl, err := template.New("folio").Funcs(funcs).ParseFS(layoutsFS, "layouts/*.html", "layouts/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing built-in layouts: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(includesDir, "*.html"))
	if err != nil {
		return nil, err
	}
	partials, err := filepath.Glob(filepath.Join(includesDir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	files = append(files, partials...)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading include %s: %w", f, err)
		}
		name := filepath.Base(f)
		name = name[:len(name)-len(filepath.Ext(name))]
		if _, err := tmpl.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("parsing include %s: %w", f, err)
		}
	}
	return tmpl, nil
}

// layoutFor picks the template of an item: its frontmatter layout if set,
// else item for collection entries and page for standalone pages. A layout
// given as a file name ("work.html") resolves to its base name.
func layoutFor(tmpl *template.Template, layout, fallback string) (*template.Template, error) {
	if layout == "" {
		layout = fallback
	}
	t := tmpl.Lookup(layout)
	if t == nil {
		base := filepath.Base(layout)
		t = tmpl.Lookup(base[:len(base)-len(filepath.Ext(base))])
	}
	if t == nil {
		return nil, fmt.Errorf("unknown layout %q", layout)
	}
	return t, nil
}
