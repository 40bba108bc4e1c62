package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	s := Default()

	if diff := cmp.Diff([]string{"experience", "work"}, s.Types()); diff != "" {
		t.Errorf("Types() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"science", "policy", "tech"}, s.ValidTags()); diff != "" {
		t.Errorf("ValidTags() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"project", "publication"}, s.ValidWorkTypes()); diff != "" {
		t.Errorf("ValidWorkTypes() mismatch (-want +got):\n%s", diff)
	}

	work, ok := s.For("work")
	if !ok {
		t.Fatal("work type missing")
	}
	if work.Fields["year"].Type != TypeNumber {
		t.Errorf("work.year type = %q, want number", work.Fields["year"].Type)
	}
	if _, ok := s.For("talks"); ok {
		t.Error("unexpected talks type")
	}

	names := s.FieldNames()
	for _, want := range []string{"organization", "journal", "tags"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("FieldNames() missing %q", want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	doc := `{
  "post": {"required": ["title"], "fields": {"title": {"type": "string"}}},
  "validation": {"tags": {"validValues": ["a"]}, "workTypes": {"validValues": []}}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	post, ok := s.For("post")
	if !ok || len(post.Required) != 1 || post.Required[0] != "title" {
		t.Errorf("post type = %+v", post)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{"malformed json", `{"validation": `, "not valid JSON"},
		{"missing validation", `{"work": {"required": [], "fields": {}}}`, "validation"},
		{"bad field type", `{"work": {"required": [], "fields": {"year": {"type": "integer"}}},
			"validation": {"tags": {"validValues": []}, "workTypes": {"validValues": []}}}`, "/work/fields/year/type"},
		{"required not array", `{"work": {"required": "title", "fields": {}},
			"validation": {"tags": {"validValues": []}, "workTypes": {"validValues": []}}}`, "/work/required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("content-schemas.json", []byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("error %v should wrap ErrInvalidSchema", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCheckDataFiles(t *testing.T) {
	if !HasSchema("app-theme.json") || !HasSchema("navigation.json") {
		t.Fatal("expected embedded schemas for app-theme and navigation")
	}
	if HasSchema("site.json") {
		t.Error("site.json should not have an embedded schema")
	}

	issues, err := Check("navigation.json", []byte(`{"main": [{"label": "About"}]}`))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(issues) == 0 {
		t.Fatal("expected an issue for a link without href")
	}
	if issues[0].Location != "/main/0" {
		t.Errorf("issue location = %q, want /main/0", issues[0].Location)
	}

	if _, err := Check("site.json", []byte(`{"title": `)); err == nil {
		t.Error("expected error for invalid JSON without schema")
	}
	if issues, err := Check("site.json", []byte(`{"title": "x"}`)); err != nil || len(issues) != 0 {
		t.Errorf("site.json: issues=%v err=%v", issues, err)
	}
}

func TestDefaultDataFilesValidate(t *testing.T) {
	files, err := DefaultDataFiles()
	if err != nil {
		t.Fatalf("DefaultDataFiles() error: %v", err)
	}
	for _, name := range []string{"site.json", "app-theme.json", "navigation.json", "component-variants.json", FileName} {
		data, ok := files[name]
		if !ok {
			t.Errorf("missing default %s", name)
			continue
		}
		issues, err := Check(name, data)
		if err != nil || len(issues) > 0 {
			t.Errorf("default %s: issues=%v err=%v", name, issues, err)
		}
	}
}

func TestCheckNumbers(t *testing.T) {
	base := `{"themes": {"light": {"bg": "#fff"}, "dark": {"bg": "#000"}}, "colors": {"neutral": {"50": "#fafafa"}}, "sidebar": {"breakpoints": {"tablet": %s}}}`
	tests := []struct {
		tablet     string
		wantIssues bool
	}{
		{"768", false},
		{"768.5", true},
		{"0", true},
		{`"wide"`, true},
	}
	for _, tt := range tests {
		issues, err := Check("app-theme.json", []byte(fmt.Sprintf(base, tt.tablet)))
		if err != nil {
			t.Fatalf("Check(tablet=%s) error: %v", tt.tablet, err)
		}
		if got := len(issues) > 0; got != tt.wantIssues {
			t.Errorf("Check(tablet=%s) issues = %v, want issues %t", tt.tablet, issues, tt.wantIssues)
		}
	}

	if _, err := Check("app-theme.json", []byte(`{"themes": `)); err == nil {
		t.Error("expected error for invalid JSON with a schema")
	}
}
