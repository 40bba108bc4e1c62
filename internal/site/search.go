package site

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/qtpi-bonding/folio/internal/content"
)

// SearchIndexFile is the output-relative path of the search index.
const SearchIndexFile = "search-index.json"

// maxSearchContent bounds the body text stored per entry.
const maxSearchContent = 2000

// SearchEntry represents a single searchable page of the site.
type SearchEntry struct {
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags,omitempty"`
	Content string   `json:"content"`
}

// BuildSearchIndex returns one entry per item, skipping items that failed
// to parse.
func BuildSearchIndex(items []*content.Item) []SearchEntry {
	entries := make([]SearchEntry, 0, len(items))
	for _, it := range items {
		if it.Err != nil {
			continue
		}
		entries = append(entries, SearchEntry{
			Path:    it.URL,
			Title:   it.Title(),
			Summary: it.Summary(),
			Tags:    it.Tags(),
			Content: searchText(it.Body),
		})
	}
	return entries
}

// searchText joins the non-blank lines of a Markdown body, dropping heading
// markers, and truncates the result on a rune boundary.
func searchText(body []byte) string {
	var lines []string
	for _, l := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), "#"))
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}
	text := strings.Join(lines, " ")
	if len(text) <= maxSearchContent {
		return text
	}
	cut := maxSearchContent
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// MarshalSearchIndex encodes entries as indented JSON.
func MarshalSearchIndex(entries []SearchEntry) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}

// LoadSearchIndex decodes a search-index.json document.
func LoadSearchIndex(data []byte) ([]SearchEntry, error) {
	var entries []SearchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Search returns the entries whose title, summary, tags or content contain
// every whitespace-separated term of query, case-insensitively. Title
// matches rank first.
func Search(entries []SearchEntry, query string, limit int) []SearchEntry {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}

	var titleHits, otherHits []SearchEntry
	for _, e := range entries {
		title := strings.ToLower(e.Title)
		haystack := strings.ToLower(strings.Join([]string{e.Title, e.Summary, strings.Join(e.Tags, " "), e.Content}, " "))
		matched, inTitle := true, true
		for _, term := range terms {
			if !strings.Contains(haystack, term) {
				matched = false
				break
			}
			if !strings.Contains(title, term) {
				inTitle = false
			}
		}
		if !matched {
			continue
		}
		if inTitle {
			titleHits = append(titleHits, e)
		} else {
			otherHits = append(otherHits, e)
		}
	}

	results := append(titleHits, otherHits...)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
