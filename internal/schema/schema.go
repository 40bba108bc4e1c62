package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// FileName is the name of the content schema inside the data directory.
const FileName = "content-schemas.json"

// Field types understood by the content validator.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// ErrInvalidSchema is wrapped by every error about a malformed schema document.
var ErrInvalidSchema = errors.New("invalid content schema")

//go:embed schemas/*.json
var schemaFS embed.FS

//go:embed defaults/*.json
var defaultsFS embed.FS

// Field describes one frontmatter field of a content type.
type Field struct {
	Type        string `json:"type"`
	ValidValues []any  `json:"validValues,omitempty"`
	Description string `json:"description,omitempty"`
}

// Type is the schema of one content type.
type Type struct {
	Required []string         `json:"required"`
	Fields   map[string]Field `json:"fields"`
}

// ValueList is a list of allowed values.
type ValueList struct {
	ValidValues []string `json:"validValues"`
}

// Rules holds the cross-type validation settings.
type Rules struct {
	Tags      ValueList `json:"tags"`
	WorkTypes ValueList `json:"workTypes"`
}

// Schemas is a decoded content-schemas.json document.
type Schemas struct {
	types      map[string]Type
	validation Rules
}

// Issue is one JSON Schema violation at a JSON pointer location.
type Issue struct {
	Location string
	Message  string
}

func (i Issue) String() string {
	loc := i.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, i.Message)
}

// Error reports a document that does not match its embedded JSON Schema.
type Error struct {
	File   string
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s: %s", e.File, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return ErrInvalidSchema }

// Load reads and decodes a content schema file.
func Load(path string) (*Schemas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content schema: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a content schema document. name is used in error messages.
func Parse(name string, data []byte) (*Schemas, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v", ErrInvalidSchema, name, err)
	}

	issues, err := Check(FileName, data)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &Error{File: name, Issues: issues}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, name, err)
	}

	s := &Schemas{types: make(map[string]Type, len(raw))}
	for key, msg := range raw {
		if key == "validation" {
			if err := json.Unmarshal(msg, &s.validation); err != nil {
				return nil, fmt.Errorf("%w: %s: validation: %v", ErrInvalidSchema, name, err)
			}
			continue
		}
		var t Type
		if err := json.Unmarshal(msg, &t); err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidSchema, name, key, err)
		}
		if t.Fields == nil {
			t.Fields = map[string]Field{}
		}
		s.types[key] = t
	}
	return s, nil
}

// Default returns the schema shipped with new sites.
func Default() *Schemas {
	data, err := defaultsFS.ReadFile("defaults/" + FileName)
	if err != nil {
		panic(err)
	}
	s, err := Parse(FileName, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Types returns the content type names, sorted.
func (s *Schemas) Types() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// For returns the schema of a content type.
func (s *Schemas) For(contentType string) (Type, bool) {
	t, ok := s.types[contentType]
	return t, ok
}

// ValidTags returns the allowed tag values.
func (s *Schemas) ValidTags() []string { return s.validation.Tags.ValidValues }

// ValidWorkTypes returns the allowed work item types.
func (s *Schemas) ValidWorkTypes() []string { return s.validation.WorkTypes.ValidValues }

// FieldNames returns the union of the fields declared by every type, sorted.
func (s *Schemas) FieldNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, t := range s.types {
		for name := range t.Fields {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// HasSchema reports whether an embedded JSON Schema exists for a data file.
func HasSchema(dataFile string) bool {
	_, err := schemaFS.ReadFile(schemaPath(dataFile))
	return err == nil
}

// Check validates a data file against its embedded JSON Schema. Files
// without a schema produce no issues. Invalid JSON is returned as an error.
func Check(dataFile string, data []byte) ([]Issue, error) {
	if !HasSchema(dataFile) {
		if !json.Valid(data) {
			return nil, fmt.Errorf("%s is not valid JSON", dataFile)
		}
		return nil, nil
	}

	sch, err := compile(dataFile)
	if err != nil {
		return nil, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", dataFile, err)
	}

	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return collectIssues(ve), nil
		}
		return nil, err
	}
	return nil, nil
}

// DefaultDataFiles returns the starter data files keyed by file name.
func DefaultDataFiles() (map[string][]byte, error) {
	entries, err := defaultsFS.ReadDir("defaults")
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := defaultsFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return nil, err
		}
		files[e.Name()] = data
	}
	return files, nil
}

func schemaPath(dataFile string) string {
	base := strings.TrimSuffix(path.Base(dataFile), ".json")
	return "schemas/" + base + ".schema.json"
}

func compile(dataFile string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(schemaPath(dataFile))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("loading schema for %s: %w", dataFile, err)
	}
	return compiler.Compile("schema.json")
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
