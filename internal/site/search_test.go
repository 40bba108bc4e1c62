package site

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/qtpi-bonding/folio/internal/content"
)

func item(t *testing.T, name, src string) *content.Item {
	t.Helper()
	it, err := content.Parse(name, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	it.URL = "/work/" + it.Slug + "/"
	return it
}

func TestBuildSearchIndex(t *testing.T) {
	items := []*content.Item{
		item(t, "alpha.md", "---\ntitle: Alpha\nsummary: First.\ntags: [science]\n---\n# Heading\n\nBody text.\n\nMore.\n"),
		{Slug: "broken", Err: errors.New("bad frontmatter")},
		item(t, "beta.md", "no frontmatter here"),
	}

	got := BuildSearchIndex(items)
	want := []SearchEntry{
		{Path: "/work/alpha/", Title: "Alpha", Summary: "First.", Tags: []string{"science"}, Content: "Heading Body text. More."},
		{Path: "/work/beta/", Title: "Beta", Content: "no frontmatter here"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSearchIndex() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextTruncates(t *testing.T) {
	body := strings.Repeat("é", maxSearchContent)
	got := searchText([]byte(body))
	if len(got) > maxSearchContent {
		t.Errorf("len = %d, want <= %d", len(got), maxSearchContent)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
}

func TestSearchIndexRoundTrip(t *testing.T) {
	entries := []SearchEntry{{Path: "/a/", Title: "A", Content: "x"}}
	data, err := MarshalSearchIndex(entries)
	if err != nil {
		t.Fatal(err)
	}
	got, err := LoadSearchIndex(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if _, err := LoadSearchIndex([]byte("{")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestSearch(t *testing.T) {
	entries := []SearchEntry{
		{Path: "/a/", Title: "Telescope scheduling", Content: "observations"},
		{Path: "/b/", Title: "Policy brief", Summary: "About telescope funding"},
		{Path: "/c/", Title: "Other", Tags: []string{"tech"}},
	}

	paths := func(es []SearchEntry) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Path)
		}
		return out
	}

	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"telescope", 0, []string{"/a/", "/b/"}},
		{"TELESCOPE funding", 0, []string{"/b/"}},
		{"tech", 0, []string{"/c/"}},
		{"telescope", 1, []string{"/a/"}},
		{"   ", 0, nil},
		{"nothing", 0, nil},
	}
	for _, tt := range tests {
		got := paths(Search(entries, tt.query, tt.limit))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
		}
	}
}
