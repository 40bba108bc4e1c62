package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var neutralShades = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}

// darkNeutrals invert the lighter neutral shades for dark backgrounds.
var darkNeutrals = [][2]string{
	{"50", "#1f2937"},
	{"100", "#374151"},
	{"200", "#4b5563"},
	{"700", "#d1d5db"},
	{"800", "#1f2937"},
}

type navColors struct {
	text, background string
}

var (
	lightNav = navColors{text: "#2D3748", background: "rgba(255, 255, 255, 0.95)"}
	darkNav  = navColors{text: "#E2E8F0", background: "rgba(0, 0, 0, 0.95)"}
)

var filterTokens = [][2]string{
	{"filter-inactive", "var(--color-neutral-100)"},
	{"filter-inactive-text", "var(--color-textSecondary)"},
	{"filter-active", "var(--color-primary)"},
	{"filter-active-text", "var(--color-surface)"},
	{"filter-hover", "var(--color-neutral-100)"},
	{"filter-hover-text", "var(--color-primary)"},
}

// GenerateCSS renders the color design tokens stylesheet.
func GenerateCSS(t *Theme) string {
	var b strings.Builder

	b.WriteString("/* Color Design Tokens */\n")
	b.WriteString("/* AUTO-GENERATED from app-theme.json - DO NOT EDIT MANUALLY */\n")
	b.WriteString("/* Run 'folio theme' to regenerate this file */\n\n")

	b.WriteString(":root {\n  /* Light theme colors (default) */\n")
	writeVars(&b, "  ", t.Light)
	b.WriteString("\n  /* Neutral colors - consistent across themes */\n")
	for pair := t.Neutral.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "  --color-neutral-%s: %s;\n", pair.Key, pair.Value)
	}
	b.WriteString("}\n\n")

	b.WriteString("/* Light theme (explicit) */\n[data-theme=\"light\"] {\n")
	writeVars(&b, "  ", t.Light)
	writeNav(&b, "  ", t.Light, lightNav)
	writeFilter(&b, "  ")
	b.WriteString("}\n\n")

	b.WriteString("/* Dark theme */\n[data-theme=\"dark\"] {\n")
	writeDark(&b, "  ", t.Dark)
	b.WriteString("}\n\n")

	b.WriteString("/* System preference fallback */\n@media (prefers-color-scheme: dark) {\n  :root:not([data-theme]) {\n")
	writeDark(&b, "    ", t.Dark)
	b.WriteString("  }\n}\n\n")

	writeUtilities(&b, t)
	b.WriteString(features)
	return b.String()
}

func writeVars(b *strings.Builder, indent string, p *Palette) {
	for pair := p.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(b, "%s--color-%s: %s;\n", indent, pair.Key, pair.Value)
	}
}

func writeNav(b *strings.Builder, indent string, p *Palette, nav navColors) {
	hover, _ := p.Get("secondary")
	active, _ := p.Get("primary")
	fmt.Fprintf(b, "\n%s/* Navigation-specific colors for sidebar visibility */\n", indent)
	fmt.Fprintf(b, "%s--color-nav-text: %s;\n", indent, nav.text)
	fmt.Fprintf(b, "%s--color-nav-hover: %s;\n", indent, hover)
	fmt.Fprintf(b, "%s--color-nav-active: %s;\n", indent, active)
	fmt.Fprintf(b, "%s--color-nav-background: %s;\n", indent, nav.background)
}

func writeFilter(b *strings.Builder, indent string) {
	fmt.Fprintf(b, "\n%s/* Filter button colors - using theme system */\n", indent)
	for _, tok := range filterTokens {
		fmt.Fprintf(b, "%s--color-%s: %s;\n", indent, tok[0], tok[1])
	}
}

func writeDark(b *strings.Builder, indent string, p *Palette) {
	writeVars(b, indent, p)
	writeNav(b, indent, p, darkNav)
	writeFilter(b, indent)
	fmt.Fprintf(b, "\n%s/* Override neutral colors for dark theme */\n", indent)
	for _, n := range darkNeutrals {
		fmt.Fprintf(b, "%s--color-neutral-%s: %s;\n", indent, n[0], n[1])
	}
}

func writeUtilities(b *strings.Builder, t *Theme) {
	keys := Keys(t.Light)

	b.WriteString("/* Utility classes for theme colors */\n/* Text colors */\n")
	for _, k := range keys {
		fmt.Fprintf(b, ".text-%s { color: var(--color-%s); }\n", k, k)
	}
	b.WriteString("\n/* Background colors */\n")
	for _, k := range keys {
		fmt.Fprintf(b, ".bg-%s { background-color: var(--color-%s); }\n", k, k)
	}
	b.WriteString("\n/* Border colors */\n")
	for _, k := range keys {
		fmt.Fprintf(b, ".border-%s { border-color: var(--color-%s); }\n", k, k)
	}

	b.WriteString("\n/* Navigation-specific utility classes */\n")
	b.WriteString(".text-nav-text { color: var(--color-nav-text); }\n")
	b.WriteString(".text-nav-hover { color: var(--color-nav-hover); }\n")
	b.WriteString(".text-nav-active { color: var(--color-nav-active); }\n")
	b.WriteString(".bg-nav-background { background-color: var(--color-nav-background); }\n")

	b.WriteString("\n/* Filter button utility classes */\n")
	for _, tok := range filterTokens {
		prop := "color"
		prefix := "text"
		if !strings.HasSuffix(tok[0], "-text") {
			prop, prefix = "background-color", "bg"
		}
		fmt.Fprintf(b, ".%s-%s { %s: var(--color-%s); }\n", prefix, tok[0], prop, tok[0])
	}

	b.WriteString("\n/* Neutral color utilities */\n")
	for _, s := range neutralShades {
		fmt.Fprintf(b, ".text-neutral-%s { color: var(--color-neutral-%s); }\n", s, s)
	}
	b.WriteString("\n")
	for _, s := range neutralShades {
		fmt.Fprintf(b, ".bg-neutral-%s { background-color: var(--color-neutral-%s); }\n", s, s)
	}
	b.WriteString("\n")
	for _, s := range neutralShades {
		fmt.Fprintf(b, ".border-neutral-%s { border-color: var(--color-neutral-%s); }\n", s, s)
	}
}

// Check reports the tokens and sections missing from css.
func Check(css string, t *Theme) []string {
	var missing []string
	for _, k := range Keys(t.Light) {
		for _, want := range []string{"--color-" + k + ":", ".text-" + k, ".bg-" + k} {
			if !strings.Contains(css, want) {
				missing = append(missing, want)
			}
		}
	}
	for _, want := range []string{`[data-theme="light"]`, `[data-theme="dark"]`, "@media (prefers-color-scheme: dark)"} {
		if !strings.Contains(css, want) {
			missing = append(missing, want)
		}
	}
	return missing
}

// WriteCSS generates the stylesheet into dir/CSSPath and returns the written
// path and its size in bytes.
func WriteCSS(t *Theme, dir string) (string, int, error) {
	path := filepath.Join(dir, filepath.FromSlash(CSSPath))
	css := GenerateCSS(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(css), 0o644); err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, len(css), nil
}

const features = `
/* Theme System Features */

:root {
  --theme-transition: color 0.2s ease-in-out, background-color 0.2s ease-in-out, border-color 0.2s ease-in-out;
}

* {
  transition: var(--theme-transition);
}

/* No transitions while the initial theme is applied */
.theme-loading * {
  transition: none !important;
}

:focus-visible {
  outline: 2px solid var(--color-secondary);
  outline-offset: 2px;
  border-radius: 0.25rem;
}

@media (prefers-contrast: high) {
  :root {
    --color-primary: #0066CC;
    --color-secondary: #004499;
  }

  [data-theme="dark"] {
    --color-primary: #66B3FF;
    --color-secondary: #99CCFF;
  }
}

@media (prefers-reduced-motion: reduce) {
  * {
    transition: none !important;
    animation: none !important;
  }
}

@media print {
  :root {
    --color-primary: #000000;
    --color-secondary: #666666;
    --color-surface: #ffffff;
    --color-text: #000000;
    --color-textSecondary: #666666;
  }

  * {
    transition: none !important;
    box-shadow: none !important;
  }
}

::selection {
  background-color: var(--color-secondary);
  color: var(--color-surface);
}

::-moz-selection {
  background-color: var(--color-secondary);
  color: var(--color-surface);
}

::-webkit-scrollbar {
  width: 8px;
  height: 8px;
}

::-webkit-scrollbar-track {
  background: var(--color-neutral-100);
}

[data-theme="dark"] ::-webkit-scrollbar-track {
  background: var(--color-neutral-800);
}

::-webkit-scrollbar-thumb {
  background: var(--color-neutral-400);
  border-radius: 4px;
}

::-webkit-scrollbar-thumb:hover {
  background: var(--color-neutral-500);
}

[data-theme="dark"] ::-webkit-scrollbar-thumb {
  background: var(--color-neutral-600);
}

[data-theme="dark"] ::-webkit-scrollbar-thumb:hover {
  background: var(--color-neutral-500);
}
`
