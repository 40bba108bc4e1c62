package validate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/schema"
)

func writeTestFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newValidator(t *testing.T, production bool) (*ContentValidator, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	v := NewContentValidator(schema.Default(), src, filepath.Join(dir, "_site"), production)
	v.Rel = nil
	return v, src
}

func parse(t *testing.T, src string) *content.Item {
	t.Helper()
	it, err := content.Parse("item.md", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return it
}

// messages returns "severity field: message" lines for compact assertions.
func messages(r *Report) []string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, string(i.Severity)+" "+i.Field+": "+i.Message)
	}
	return out
}

func hasMessage(r *Report, severity Severity, substr string) bool {
	for _, i := range r.Issues {
		if i.Severity == severity && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

const validWork = `---
title: Tide Gauge Toolkit
type: project
year: 2023
tags: [science, tech]
technologies: [Go, Python]
links:
  github: https://github.com/example/tide
---
A toolkit for tide gauge data.
`

func TestValidateItemValid(t *testing.T) {
	v, _ := newValidator(t, false)
	r := v.ValidateItem(parse(t, validWork), "work")

	if len(r.Issues) != 0 {
		t.Errorf("expected no issues, got %v", messages(r))
	}
	if len(r.Passed) != 1 || r.Checked != 1 {
		t.Errorf("Passed=%v Checked=%d", r.Passed, r.Checked)
	}
}

func TestValidateItemRules(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		src         string
		severity    Severity
		want        string
	}{
		{
			name:        "missing required",
			contentType: "work",
			src:         "---\ntype: project\nyear: 2020\ntags: [tech]\n---\nbody",
			severity:    SeverityError,
			want:        "Missing required field: title",
		},
		{
			name:        "empty string counts as missing",
			contentType: "work",
			src:         "---\ntitle: \"\"\ntype: project\nyear: 2020\ntags: [tech]\n---\nbody",
			severity:    SeverityError,
			want:        "Missing required field: title",
		},
		{
			name:        "unknown field",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\ncolor: red\n---\nbody",
			severity:    SeverityWarning,
			want:        "Unknown field: color",
		},
		{
			name:        "type mismatch",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: \"twenty\"\ntags: [tech]\n---\nbody",
			severity:    SeverityError,
			want:        "Field year must be a number, got string",
		},
		{
			name:        "float is a number",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020.5\ntags: [tech]\nfeatured: yes please\n---\nbody",
			severity:    SeverityError,
			want:        "Field featured must be a boolean, got string",
		},
		{
			name:        "object rejects arrays",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nmedia: [a, b]\n---\nbody",
			severity:    SeverityError,
			want:        "Field media must be a object, got array",
		},
		{
			name:        "scalar valid values",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nstatus: paused\n---\nbody",
			severity:    SeverityError,
			want:        "Field status has invalid value: paused. Valid values are: active, completed, archived",
		},
		{
			name:        "tags absent",
			contentType: "experience",
			src:         "---\ntitle: T\norganization: O\nrole: R\nstartDate: 2020-01\n---\nbody",
			severity:    SeverityError,
			want:        "Missing required field: tags",
		},
		{
			name:        "tags not array",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: tech\n---\nbody",
			severity:    SeverityError,
			want:        "Tags must be an array, got string",
		},
		{
			name:        "tags empty",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: []\n---\nbody",
			severity:    SeverityError,
			want:        "At least one tag is required",
		},
		{
			name:        "invalid tags",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech, art, music]\n---\nbody",
			severity:    SeverityError,
			want:        "Invalid tags: art, music. Valid tags are: science, policy, tech",
		},
		{
			name:        "duplicate tags",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech, tech]\n---\nbody",
			severity:    SeverityWarning,
			want:        "Duplicate tags found",
		},
		{
			name:        "invalid work type",
			contentType: "work",
			src:         "---\ntitle: T\ntype: talk\nyear: 2020\ntags: [tech]\n---\nbody",
			severity:    SeverityError,
			want:        "Invalid work type: talk. Valid types are: project, publication",
		},
		{
			name:        "journal on project",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\njournal: Nature\n---\nbody",
			severity:    SeverityWarning,
			want:        "Journal field is typically used for publications",
		},
		{
			name:        "technologies on publication",
			contentType: "work",
			src:         "---\ntitle: T\ntype: publication\nyear: 2020\ntags: [science]\ntechnologies: [R]\n---\nbody",
			severity:    SeverityWarning,
			want:        "Technologies field is typically used for projects",
		},
		{
			name:        "media prefix",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nmedia:\n  screenshot: images/shot.png\n---\nbody",
			severity:    SeverityWarning,
			want:        "Image path screenshot should start with /, assets/, or static/: images/shot.png",
		},
		{
			name:        "missing image in development",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nimage: /assets/images/none.png\n---\nbody",
			severity:    SeverityWarning,
			want:        "Image file not found: /assets/images/none.png (will need to be added before production)",
		},
		{
			name:        "links not object",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nlinks: [https://a.example]\n---\nbody",
			severity:    SeverityError,
			want:        "Links must be an object, got array",
		},
		{
			name:        "relative link",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nlinks:\n  demo: demo.example.com\n  internal: notes\n---\nbody",
			severity:    SeverityWarning,
			want:        "Link demo should be a full URL or start with /: demo.example.com",
		},
		{
			name:        "empty body",
			contentType: "work",
			src:         "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\n---\n   \n",
			severity:    SeverityWarning,
			want:        "Content body is empty",
		},
		{
			name:        "unknown content type",
			contentType: "talks",
			src:         "---\ntitle: T\n---\nbody",
			severity:    SeverityError,
			want:        "Unknown content type: talks",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newValidator(t, false)
			r := v.ValidateItem(parse(t, tt.src), tt.contentType)
			if !hasMessage(r, tt.severity, tt.want) {
				t.Errorf("expected %s %q, got %v", tt.severity, tt.want, messages(r))
			}
		})
	}
}

func TestValidateItemCollectsAllErrors(t *testing.T) {
	v, _ := newValidator(t, false)
	src := "---\ntype: talk\nyear: \"x\"\ntags: [art]\n---\nbody"
	r := v.ValidateItem(parse(t, src), "work")

	if got := len(r.Errors()); got != 4 {
		t.Errorf("expected 4 errors (title, tags, type, year), got %d: %v", got, messages(r))
	}
	if len(r.Passed) != 0 {
		t.Error("file with errors should not be listed as passed")
	}
}

func TestValidateItemNoDuplicateTagErrors(t *testing.T) {
	v, _ := newValidator(t, false)
	src := "---\ntitle: T\ntype: project\nyear: 2020\ntags: [art]\n---\nbody"
	r := v.ValidateItem(parse(t, src), "work")

	if got := len(r.Errors()); got != 1 {
		t.Errorf("invalid tags should be reported once, got %v", messages(r))
	}
}

func TestValidateItemParseFailure(t *testing.T) {
	v, _ := newValidator(t, false)
	it := &content.Item{SourcePath: "broken.md", Data: map[string]any{}, Err: errors.New("yaml: line 2: did not find expected node content")}
	r := v.ValidateItem(it, "work")
	if !hasMessage(r, SeverityError, "Failed to parse file: yaml: line 2") {
		t.Errorf("got %v", messages(r))
	}
	if len(r.Issues) != 1 {
		t.Errorf("parse failures should stop further checks, got %v", messages(r))
	}
}

func TestImagesProductionAndExisting(t *testing.T) {
	v, src := newValidator(t, true)
	writeTestFile(t, filepath.Join(src, "assets", "images", "here.png"), "png")

	missing := "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nmedia:\n  screenshot: /assets/images/gone.png\n---\nbody"
	r := v.ValidateItem(parse(t, missing), "work")
	if !hasMessage(r, SeverityError, "Image file not found: /assets/images/gone.png") {
		t.Errorf("missing image should be an error in production, got %v", messages(r))
	}

	present := "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nmedia:\n  screenshot: /assets/images/here.png\n  tocImage: assets/images/here.png\n---\nbody"
	r = v.ValidateItem(parse(t, present), "work")
	if len(r.Issues) != 0 {
		t.Errorf("existing images should pass, got %v", messages(r))
	}
}

func TestValidateAllMissingDirectory(t *testing.T) {
	v, src := newValidator(t, false)
	writeTestFile(t, filepath.Join(src, "content", "work", "tide.md"), validWork)

	lib, err := content.Load(src, config.DefaultCollections)
	if err != nil {
		t.Fatal(err)
	}
	r := v.ValidateAll(lib)

	if !hasMessage(r, SeverityWarning, "Content directory not found") {
		t.Errorf("expected missing experience directory warning, got %v", messages(r))
	}
	if r.Checked != 1 || r.HasErrors() {
		t.Errorf("Checked=%d issues=%v", r.Checked, messages(r))
	}
}

func newBuildConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.SourceDir = filepath.Join(dir, "src")
	cfg.OutputDir = filepath.Join(dir, "_site")
	return cfg
}

func TestBuildValidatorDataFiles(t *testing.T) {
	cfg := newBuildConfig(t)
	files, err := schema.DefaultDataFiles()
	if err != nil {
		t.Fatal(err)
	}
	for name, data := range files {
		writeTestFile(t, cfg.DataPath(name), string(data))
	}
	writeTestFile(t, cfg.DataPath("site.json"), `{"title": `)
	writeTestFile(t, cfg.DataPath("navigation.json"), `{"main": [{"label": "About"}]}`)
	if err := os.Remove(cfg.DataPath("component-variants.json")); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(cfg.SourceDir, "content", "work", "tide.md"), validWork)

	lib, err := content.Load(cfg.SourceDir, cfg.Collections)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuildValidator(cfg, schema.Default())
	b.Rel = nil
	r := b.Run(lib)

	if !hasMessage(r, SeverityError, "Invalid JSON in configuration file") {
		t.Errorf("expected invalid JSON error, got %v", messages(r))
	}
	if !hasMessage(r, SeverityError, "Schema violation") {
		t.Errorf("expected schema violation for navigation.json, got %v", messages(r))
	}
	if !hasMessage(r, SeverityWarning, "Configuration file not found") {
		t.Errorf("expected missing component-variants warning, got %v", messages(r))
	}
	if !hasMessage(r, SeverityWarning, "Required directory not found") {
		t.Errorf("expected required directory warning, got %v", messages(r))
	}
	if err := r.Err(false); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Err() = %v, want ErrValidationFailed", err)
	}
}

func TestBuildValidatorDisabled(t *testing.T) {
	cfg := newBuildConfig(t)
	cfg.Validation.Enabled = false

	r := NewBuildValidator(cfg, schema.Default()).Run(&content.Library{})
	if len(r.Issues) != 0 {
		t.Errorf("disabled validation should report nothing, got %v", messages(r))
	}
	if len(r.Notices) != 1 || !strings.Contains(r.Notices[0], "disabled") {
		t.Errorf("Notices = %v", r.Notices)
	}
}

func TestBuildValidatorNoContent(t *testing.T) {
	cfg := newBuildConfig(t)
	b := NewBuildValidator(cfg, schema.Default())
	b.Rel = nil

	lib, err := content.Load(cfg.SourceDir, cfg.Collections)
	if err != nil {
		t.Fatal(err)
	}
	r := b.Run(lib)
	if !hasMessage(r, SeverityWarning, "No content files found. Add some experience or work entries.") {
		t.Errorf("got %v", messages(r))
	}
}

func TestReportErr(t *testing.T) {
	r := &Report{}
	if r.Err(true) != nil {
		t.Error("empty report should pass")
	}
	r.addWarning("a.md", "", "w")
	if r.Err(false) != nil {
		t.Error("warnings alone should pass without fail_on_warnings")
	}
	if err := r.Err(true); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Err(true) = %v, want ErrValidationFailed", err)
	}
}

func TestPrint(t *testing.T) {
	r := &Report{Passed: []string{"good.md"}}
	r.addError("bad.md", "tags", "Invalid tags: art")
	r.addWarning("bad.md", "color", "Unknown field: color")

	var buf bytes.Buffer
	ok := Print(&buf, r, PrintOptions{Mode: ModeBuild, Help: config.DefaultHelpMessages})
	if ok {
		t.Error("Print should report failure when errors exist")
	}
	out := buf.String()
	for _, want := range []string{
		"✓ good.md",
		"Build validation failed with 1 error(s)",
		"1. bad.md (tags):",
		"Tag Guidelines:",
		"folio validate --fix",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Work Type Guidelines") {
		t.Error("work type help should only print for type errors")
	}
}

func TestPrintContentModeWarningsOnly(t *testing.T) {
	r := &Report{}
	r.addWarning("a.md", "tags", "Duplicate tags found")

	var buf bytes.Buffer
	if !Print(&buf, r, PrintOptions{Mode: ModeContent}) {
		t.Error("warnings alone should pass")
	}
	if !strings.Contains(buf.String(), "a.md (tags): Duplicate tags found") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if Print(&buf, r, PrintOptions{Mode: ModeContent, FailOnWarnings: true}) {
		t.Error("FailOnWarnings should fail on warnings")
	}
}

func TestPrintFixGuide(t *testing.T) {
	var buf bytes.Buffer
	PrintFixGuide(&buf, schema.Default(), config.DefaultHelpMessages)
	out := buf.String()
	for _, want := range []string{
		"Valid tags: science, policy, tech",
		"Valid work types: project, publication",
		"Required fields: title, type, year, tags",
		"type: project",
		"tags: [science]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("guide missing %q:\n%s", want, out)
		}
	}
}

func TestValidateArrayValidValues(t *testing.T) {
	s, err := schema.Parse("content-schemas.json", []byte(`{
  "work": {
    "required": ["title", "tags"],
    "fields": {
      "title": {"type": "string"},
      "type": {"type": "string"},
      "tags": {"type": "array"},
      "technologies": {"type": "array", "validValues": ["Go", "Python", "R"]}
    }
  },
  "validation": {
    "tags": {"validValues": ["tech"]},
    "workTypes": {"validValues": ["project"]}
  }
}`))
	if err != nil {
		t.Fatalf("schema.Parse: %v", err)
	}
	v := NewContentValidator(s, t.TempDir(), t.TempDir(), false)
	v.Rel = nil

	r := v.ValidateItem(parse(t, "---\ntitle: T\ntype: project\ntags: [tech]\ntechnologies: [Go, Rust, Julia]\n---\nbody"), "work")
	want := "error technologies: Field technologies contains invalid values: Rust, Julia. Valid values are: Go, Python, R"
	found := false
	for _, m := range messages(r) {
		if m == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q, got %v", want, messages(r))
	}

	r = v.ValidateItem(parse(t, "---\ntitle: T\ntype: project\ntags: [tech]\ntechnologies: [Go, R]\n---\nbody"), "work")
	if len(r.Errors()) != 0 {
		t.Errorf("valid technologies reported: %v", messages(r))
	}
}

func TestMissingImagesReportMediaField(t *testing.T) {
	v, _ := newValidator(t, false)
	src := "---\ntitle: T\ntype: project\nyear: 2020\ntags: [tech]\nimage: /assets/images/card.png\nmedia:\n  screenshot: /assets/images/shot.png\n---\nbody"
	r := v.ValidateItem(parse(t, src), "work")

	var fields []string
	for _, i := range r.Issues {
		if strings.HasPrefix(i.Message, "Image file not found") {
			fields = append(fields, i.Field)
		}
	}
	if len(fields) != 2 || fields[0] != "media" || fields[1] != "media" {
		t.Errorf("missing image fields = %v, want [media media]", fields)
	}
}
