package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/schema"
)

// DataFiles are the data directory files checked before every build.
var DataFiles = []string{
	"site.json",
	"app-theme.json",
	"component-variants.json",
	"navigation.json",
	schema.FileName,
}

// requiredDirs are source-relative directories a site is expected to have.
var requiredDirs = []string{
	"assets/images",
	"static",
}

// BuildValidator runs the pre-build checks: content, data files and
// common project layout issues.
type BuildValidator struct {
	Config  *config.Config
	Schemas *schema.Schemas
	Rel     func(string) string
}

// NewBuildValidator creates a BuildValidator. s may be nil when the content
// schema failed to load; the data file checks report why.
func NewBuildValidator(cfg *config.Config, s *schema.Schemas) *BuildValidator {
	return &BuildValidator{Config: cfg, Schemas: s, Rel: relToWorkingDir}
}

// Run validates lib and the project layout.
func (b *BuildValidator) Run(lib *content.Library) *Report {
	r := &Report{}
	if !b.Config.Validation.Enabled {
		r.Notices = append(r.Notices, "Content validation is disabled")
		return r
	}

	if b.Schemas != nil {
		cv := NewContentValidator(b.Schemas, b.Config.SourceDir, b.Config.OutputDir, b.Config.IsProduction())
		cv.Rel = b.Rel
		r.Merge(cv.ValidateAll(lib))
	} else {
		r.Notices = append(r.Notices, "Content schema unavailable, skipping content checks")
	}

	r.Merge(b.checkDataFiles())
	r.Merge(b.checkCommonIssues(lib))
	return r
}

func (b *BuildValidator) checkDataFiles() *Report {
	r := &Report{}
	for _, name := range DataFiles {
		path := b.Config.DataPath(name)
		file := b.rel(path)

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			r.addWarning(file, "", fmt.Sprintf("Configuration file not found: %s", file))
			continue
		}
		if err != nil {
			r.addError(file, "", fmt.Sprintf("Reading configuration file: %v", err))
			continue
		}

		issues, err := schema.Check(name, data)
		if err != nil {
			r.addError(file, "", fmt.Sprintf("Invalid JSON in configuration file: %v", err))
			continue
		}
		for _, issue := range issues {
			loc := issue.Location
			if loc == "" {
				loc = "/"
			}
			r.addError(file, loc, fmt.Sprintf("Schema violation: %s", issue.Message))
		}
		if len(issues) == 0 {
			r.Passed = append(r.Passed, file)
		}
	}
	return r
}

func (b *BuildValidator) checkCommonIssues(lib *content.Library) *Report {
	r := &Report{}
	for _, dir := range requiredDirs {
		path := filepath.Join(b.Config.SourceDir, filepath.FromSlash(dir))
		if _, err := os.Stat(path); err != nil {
			r.addWarning(b.rel(path), "", fmt.Sprintf("Required directory not found: %s", b.rel(path)))
		}
	}

	if lib == nil || lib.Count() == 0 {
		names := b.Config.CollectionNames()
		r.addWarning("content", "", fmt.Sprintf("No content files found. Add some %s entries.", strings.Join(names, " or ")))
		return r
	}

	counts := make([]string, 0, len(lib.Names))
	for _, name := range lib.Names {
		counts = append(counts, fmt.Sprintf("%d %s", len(lib.Items(name)), name))
	}
	r.Notices = append(r.Notices, fmt.Sprintf("Found %s entries", strings.Join(counts, ", ")))
	return r
}

func (b *BuildValidator) rel(path string) string {
	if b.Rel == nil {
		return path
	}
	return b.Rel(path)
}
