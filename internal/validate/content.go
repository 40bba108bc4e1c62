package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/schema"
)

// imageFields are top-level frontmatter fields holding an image path.
var imageFields = []string{"image", "photo", "avatar"}

// mediaFields are the image paths nested under media.
var mediaFields = []string{"screenshot", "tocImage"}

// ContentValidator checks frontmatter against the content schemas.
type ContentValidator struct {
	Schemas    *schema.Schemas
	SourceDir  string
	OutputDir  string
	Production bool

	// Rel shortens file paths in issues, usually relative to the working directory.
	Rel func(string) string
}

// NewContentValidator creates a validator rooted at the given directories.
func NewContentValidator(s *schema.Schemas, sourceDir, outputDir string, production bool) *ContentValidator {
	return &ContentValidator{
		Schemas:    s,
		SourceDir:  sourceDir,
		OutputDir:  outputDir,
		Production: production,
		Rel:        relToWorkingDir,
	}
}

// ValidateAll validates every item of the library. A missing content
// directory is reported as a warning.
func (v *ContentValidator) ValidateAll(lib *content.Library) *Report {
	r := &Report{}
	for _, name := range lib.Names {
		if dir, missing := lib.Missing[name]; missing {
			r.addWarning(v.rel(dir), "", fmt.Sprintf("Content directory not found: %s", v.rel(dir)))
			continue
		}
		for _, it := range lib.Items(name) {
			r.Merge(v.ValidateItem(it, name))
		}
	}
	return r
}

// ValidateItem checks one item against the schema of contentType. Every
// rule runs, so a single file can carry several errors. A field that
// already has an error is not checked again by later rules.
func (v *ContentValidator) ValidateItem(it *content.Item, contentType string) *Report {
	c := &itemCheck{v: v, file: v.rel(it.SourcePath), report: &Report{Checked: 1}, errored: map[string]bool{}}

	if it.Err != nil {
		c.error("", fmt.Sprintf("Failed to parse file: %v", it.Err))
		return c.report
	}

	ts, ok := v.Schemas.For(contentType)
	if !ok {
		c.error("", fmt.Sprintf("Unknown content type: %s", contentType))
		return c.report
	}

	data := it.Data
	c.requiredFields(data, ts.Required)
	c.tags(data)
	if contentType == "work" {
		c.workType(data)
	}
	c.links(data)
	c.fieldTypes(data, ts.Fields)
	c.mediaPrefixes(data)
	c.images(data)

	if strings.TrimSpace(string(it.Body)) == "" {
		c.warning("", "Content body is empty")
	}

	if !c.report.HasErrors() {
		c.report.Passed = append(c.report.Passed, c.file)
	}
	return c.report
}

func (v *ContentValidator) rel(path string) string {
	if v.Rel == nil {
		return path
	}
	return v.Rel(path)
}

type itemCheck struct {
	v       *ContentValidator
	file    string
	report  *Report
	errored map[string]bool
}

func (c *itemCheck) error(field, msg string) {
	c.report.addError(c.file, field, msg)
	if field != "" {
		c.errored[field] = true
	}
}

func (c *itemCheck) warning(field, msg string) {
	c.report.addWarning(c.file, field, msg)
}

func (c *itemCheck) requiredFields(data map[string]any, required []string) {
	for _, field := range required {
		if isBlank(data[field]) {
			c.error(field, fmt.Sprintf("Missing required field: %s", field))
		}
	}
}

func (c *itemCheck) tags(data map[string]any) {
	if c.errored["tags"] {
		return
	}
	raw := data["tags"]
	if isBlank(raw) {
		c.error("tags", "Tags field is required")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		c.error("tags", fmt.Sprintf("Tags must be an array, got %s", typeName(raw)))
		return
	}
	if len(list) == 0 {
		c.error("tags", "At least one tag is required")
		return
	}

	valid := c.v.Schemas.ValidTags()
	var invalid []string
	seen := map[string]bool{}
	duplicate := false
	for _, tag := range list {
		s := fmt.Sprint(tag)
		if !containsString(valid, s) {
			invalid = append(invalid, s)
		}
		if seen[s] {
			duplicate = true
		}
		seen[s] = true
	}
	if len(invalid) > 0 {
		c.error("tags", fmt.Sprintf("Invalid tags: %s. Valid tags are: %s",
			strings.Join(invalid, ", "), strings.Join(valid, ", ")))
	}
	if duplicate {
		c.warning("tags", "Duplicate tags found")
	}
}

func (c *itemCheck) workType(data map[string]any) {
	if !c.errored["type"] {
		raw := data["type"]
		valid := c.v.Schemas.ValidWorkTypes()
		switch {
		case isBlank(raw):
			c.error("type", "Work type is required")
		case !containsString(valid, fmt.Sprint(raw)):
			c.error("type", fmt.Sprintf("Invalid work type: %v. Valid types are: %s", raw, strings.Join(valid, ", ")))
		}
	}

	switch fmt.Sprint(data["type"]) {
	case "project":
		if !isBlank(data["journal"]) {
			c.warning("journal", "Journal field is typically used for publications, not projects")
		}
	case "publication":
		if !isBlank(data["technologies"]) {
			c.warning("technologies", "Technologies field is typically used for projects, not publications")
		}
	}
}

func (c *itemCheck) links(data map[string]any) {
	raw, present := data["links"]
	if !present || raw == nil {
		return
	}
	links, ok := raw.(map[string]any)
	if !ok {
		c.error("links", fmt.Sprintf("Links must be an object, got %s", typeName(raw)))
		return
	}
	for _, name := range sortedKeys(links) {
		url, ok := links[name].(string)
		if !ok || url == "" || name == "internal" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "/") {
			c.warning("links", fmt.Sprintf("Link %s should be a full URL or start with /: %s", name, url))
		}
	}
}

func (c *itemCheck) fieldTypes(data map[string]any, fields map[string]schema.Field) {
	for _, name := range sortedKeys(data) {
		if c.errored[name] {
			continue
		}
		value := data[name]
		def, known := fields[name]
		if !known {
			c.warning(name, fmt.Sprintf("Unknown field: %s", name))
			continue
		}
		if value == nil {
			continue
		}
		if !matchesType(def.Type, value) {
			c.error(name, fmt.Sprintf("Field %s must be a %s, got %s", name, def.Type, typeName(value)))
			continue
		}
		if len(def.ValidValues) == 0 {
			continue
		}
		if def.Type == schema.TypeArray {
			list, _ := value.([]any)
			var invalid []string
			for _, el := range list {
				if !containsValue(def.ValidValues, el) {
					invalid = append(invalid, fmt.Sprint(el))
				}
			}
			if len(invalid) > 0 {
				c.error(name, fmt.Sprintf("Field %s contains invalid values: %s. Valid values are: %s",
					name, strings.Join(invalid, ", "), joinValues(def.ValidValues)))
			}
		} else if !containsValue(def.ValidValues, value) {
			c.error(name, fmt.Sprintf("Field %s has invalid value: %v. Valid values are: %s",
				name, value, joinValues(def.ValidValues)))
		}
	}
}

func (c *itemCheck) mediaPrefixes(data map[string]any) {
	media, _ := data["media"].(map[string]any)
	for _, field := range mediaFields {
		p, ok := media[field].(string)
		if !ok || p == "" {
			continue
		}
		if !hasImagePrefix(p) {
			c.warning("media", fmt.Sprintf("Image path %s should start with /, assets/, or static/: %s", field, p))
		}
	}
}

// images reports missing image files. Every image reference, nested under
// media or top-level, is reported against the media field.
func (c *itemCheck) images(data map[string]any) {
	var paths []string
	media, _ := data["media"].(map[string]any)
	for _, field := range mediaFields {
		if p, ok := media[field].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}
	for _, field := range imageFields {
		if p, ok := data[field].(string); ok && p != "" {
			paths = append(paths, p)
		}
	}

	for _, p := range paths {
		if c.v.imageExists(p) {
			continue
		}
		if c.v.Production {
			c.error("media", fmt.Sprintf("Image file not found: %s", p))
		} else {
			c.warning("media", fmt.Sprintf("Image file not found: %s (will need to be added before production)", p))
		}
	}
}

// imageExists looks up site-absolute paths under the source and output
// directories, relative paths under the source directory and as given.
func (v *ContentValidator) imageExists(p string) bool {
	var candidates []string
	if strings.HasPrefix(p, "/") {
		trimmed := filepath.FromSlash(strings.TrimPrefix(p, "/"))
		candidates = append(candidates, filepath.Join(v.SourceDir, trimmed), filepath.Join(v.OutputDir, trimmed))
	} else {
		candidates = append(candidates, filepath.Join(v.SourceDir, filepath.FromSlash(p)), filepath.FromSlash(p))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return true
		}
	}
	return false
}

func hasImagePrefix(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, "assets/") || strings.HasPrefix(p, "static/")
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func matchesType(want string, v any) bool {
	switch want {
	case schema.TypeString:
		_, ok := v.(string)
		return ok
	case schema.TypeNumber:
		return isNumber(v)
	case schema.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case schema.TypeArray:
		_, ok := v.([]any)
		return ok
	case schema.TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case time.Time:
		return "date"
	}
	if isNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// containsValue compares by printed form so YAML ints match JSON floats.
func containsValue(list []any, v any) bool {
	s := fmt.Sprint(v)
	for _, candidate := range list {
		if fmt.Sprint(candidate) == s {
			return true
		}
	}
	return false
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func relToWorkingDir(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
