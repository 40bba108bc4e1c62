package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/schema"
)

// Field is one frontmatter key. Fields keep the order they are given in.
type Field struct {
	Key   string
	Value any
}

// Entry is a content file to be created.
type Entry struct {
	Collection string
	Slug       string
	Fields     []Field
	Body       string
}

// Render returns the file contents: a YAML frontmatter block followed by
// the body. Lists are written in flow style, e.g. tags: [science, tech].
func (e Entry) Render() ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range e.Fields {
		var v yaml.Node
		if err := v.Encode(f.Value); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.Key, err)
		}
		if v.Kind == yaml.SequenceNode {
			v.Style = yaml.FlowStyle
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Key}, &v)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	buf.WriteString(e.Body)
	return buf.Bytes(), nil
}

// EntryPath returns where an entry of collection named slug is stored.
func EntryPath(cfg *config.Config, collection, slug string) (string, error) {
	for _, col := range cfg.Collections {
		if col.Name == collection {
			dir := filepath.FromSlash(content.GlobDir(col.Glob))
			return filepath.Join(cfg.SourceDir, dir, slug+".md"), nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", collection)
}

// WriteEntry creates the entry's file and returns its path. The slug is
// derived from the title field when empty. Existing files are left alone
// and reported with ErrExists.
func WriteEntry(cfg *config.Config, e Entry) (string, error) {
	if e.Slug == "" {
		for _, f := range e.Fields {
			if s, ok := f.Value.(string); ok && f.Key == "title" {
				e.Slug = content.Slugify(s)
			}
		}
	}
	if e.Slug == "" {
		return "", fmt.Errorf("entry needs a slug or a title")
	}

	path, err := EntryPath(cfg, e.Collection, e.Slug)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, ErrExists)
	}

	data, err := e.Render()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ParseValue converts prompt input to the Go value of a schema field type.
// Arrays are comma-separated; blank items are dropped.
func ParseValue(fieldType, input string) (any, error) {
	input = strings.TrimSpace(input)
	switch fieldType {
	case schema.TypeNumber:
		if n, err := strconv.Atoi(input); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", input)
		}
		return f, nil
	case schema.TypeBoolean:
		b, err := strconv.ParseBool(input)
		if err != nil {
			return nil, fmt.Errorf("%q is not true or false", input)
		}
		return b, nil
	case schema.TypeArray:
		items := []string{}
		for _, part := range strings.Split(input, ",") {
			if p := strings.TrimSpace(part); p != "" {
				items = append(items, p)
			}
		}
		return items, nil
	default:
		return input, nil
	}
}

// CheckValues returns an error naming the items of values not in valid.
func CheckValues(values, valid []string) error {
	var bad []string
	for _, v := range values {
		if !slices.Contains(valid, v) {
			bad = append(bad, v)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid values: %s (valid: %s)", strings.Join(bad, ", "), strings.Join(valid, ", "))
	}
	return nil
}
