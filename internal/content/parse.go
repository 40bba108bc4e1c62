package content

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/qtpi-bonding/folio/internal/walker"
)

// yamlFormat decodes --- delimited frontmatter with yaml.v3 so nested
// objects come back as map[string]any.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Parse splits YAML frontmatter from the Markdown body of source. A file
// without frontmatter yields an empty data map and the full source as body.
func Parse(path string, source []byte) (*Item, error) {
	data := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &data, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	it := &Item{
		SourcePath: path,
		Data:       data,
		Body:       body,
		Hash:       walker.HashBytes(source),
		Slug:       slugFromPath(path),
	}
	if s := strings.TrimSpace(it.String("slug")); s != "" {
		it.Slug = Slugify(s)
	}
	return it, nil
}

func slugFromPath(path string) string {
	base := filepath.Base(path)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

// stripMarks decomposes accented letters and drops the combining marks,
// so "é" becomes "e". Chained transformers keep state, so each call
// builds its own.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Slugify lowercases s, strips diacritics and joins its ASCII alphanumeric
// runs with hyphens: "Résumé 2024" becomes "resume-2024".
func Slugify(s string) string {
	if plain, _, err := transform.String(stripMarks(), s); err == nil {
		s = plain
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
