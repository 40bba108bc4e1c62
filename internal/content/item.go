package content

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageCollection is the collection name given to standalone pages.
const PageCollection = "page"

// Item is one Markdown source file with its parsed frontmatter.
type Item struct {
	Collection string
	SourcePath string
	RelPath    string
	Slug       string
	URL        string
	Data       map[string]any
	Body       []byte
	HTML       template.HTML
	Hash       string
	ModTime    time.Time

	// Err is set when the file could not be read or parsed. Such items are
	// reported by validation and skipped by the renderer.
	Err error
}

// Title returns the frontmatter title, falling back to the title-cased slug.
func (it *Item) Title() string {
	if t := strings.TrimSpace(it.String("title")); t != "" {
		return t
	}
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(it.Slug))
}

// Summary returns the first of summary, description or excerpt.
func (it *Item) Summary() string {
	for _, key := range []string{"summary", "description", "excerpt"} {
		if s := it.String(key); s != "" {
			return s
		}
	}
	return ""
}

// Layout returns the frontmatter layout, if any.
func (it *Item) Layout() string { return it.String("layout") }

// WorkType returns the work item type (project, publication, ...).
func (it *Item) WorkType() string { return it.String("type") }

// Featured reports whether the item is marked featured: true.
func (it *Item) Featured() bool {
	b, ok := it.Data["featured"].(bool)
	return ok && b
}

// Tags returns the string tags of the item. Non-string entries are skipped.
func (it *Item) Tags() []string {
	raw, ok := it.Data["tags"].([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// HasTag reports whether the item carries tag.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// Year returns the numeric year field, or 0.
func (it *Item) Year() int {
	switch v := it.Data["year"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}

// Date returns the item date: the date field, then startDate, then the
// file modification time.
func (it *Item) Date() time.Time {
	for _, key := range []string{"date", "startDate"} {
		if t, ok := ParseDate(it.Data[key]); ok {
			return t
		}
	}
	return it.ModTime
}

// String returns a string frontmatter field, or "".
func (it *Item) String(key string) string {
	switch v := it.Data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}

// Map returns a nested object field, or nil.
func (it *Item) Map(key string) map[string]any {
	m, _ := it.Data[key].(map[string]any)
	return m
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
}

// ParseDate interprets a frontmatter date value.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	case int:
		if d > 0 {
			return time.Date(d, time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
