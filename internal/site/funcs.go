package site

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qtpi-bonding/folio/internal/content"
)

// DateLayout is the display format of dateFormat.
const DateLayout = "January 2, 2006"

// funcMap returns the template functions for a site served from base.
func funcMap(base string, variants Variants) template.FuncMap {
	return template.FuncMap{
		"url":              func(p string) string { return JoinURL(base, p) },
		"safeExternalLink": SafeExternalLink,
		"dateFormat":       DateFormat,
		"currentYear":      func() int { return time.Now().Year() },
		"tagList":          TagList,
		"filterByTag":      content.FilterByTag,
		"getAllTags":       content.AllTags,
		"filterByType":     content.FilterByType,
		"getFeatured":      content.Featured,
		"variant":          variants.Class,
		"titleCase":        TitleCase,
		"lower":            strings.ToLower,
	}
}

// JoinURL prefixes a site-relative path with the base URL. Absolute URLs,
// fragments and mailto/tel links are returned unchanged; an empty path
// yields the base URL itself.
func JoinURL(base, p string) string {
	if base == "" {
		base = "/"
	}
	if strings.TrimSpace(p) == "" {
		return base
	}
	if isAbsolute(p) || strings.HasPrefix(p, "#") {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

func isAbsolute(p string) bool {
	lower := strings.ToLower(p)
	for _, prefix := range []string{"http://", "https://", "//", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// SafeExternalLink renders an href attribute. http(s) links also open in a
// new tab without leaking the opener. Script URLs are neutralised.
func SafeExternalLink(v any) template.HTMLAttr {
	href := strings.TrimSpace(fmt.Sprint(v))
	if v == nil || href == "" {
		return `href="#"`
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "vbscript:") {
		return `href="#"`
	}
	attr := `href="` + template.HTMLEscapeString(href) + `"`
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		attr += ` target="_blank" rel="noopener noreferrer"`
	}
	return template.HTMLAttr(attr)
}

// DateFormat renders a frontmatter date as "January 2, 2006". Values that
// are not dates are returned as written.
func DateFormat(v any) string {
	if t, ok := content.ParseDate(v); ok {
		return t.Format(DateLayout)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// TagList joins tags for a data-tags attribute.
func TagList(tags []string) string {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	return strings.Join(lowered, " ")
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(s))
}
