// Package scaffold creates the files of a new site and new content entries.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/content"
	"github.com/qtpi-bonding/folio/internal/schema"
)

// ErrExists is returned when an entry would overwrite an existing file.
var ErrExists = errors.New("file already exists")

// Result lists what Site created and what it left alone.
type Result struct {
	Created []string
	Skipped []string
}

// samplePages are written under the pages directory of a new site.
var samplePages = map[string]string{
	"index.md": `---
title: Hello, I'm a researcher
summary: Science, policy and the software in between.
---
Welcome to my portfolio. Edit src/pages/index.md to change this introduction.
`,
}

// sampleEntries seed the default collections so the first build has
// something to render. They validate against the default schema.
var sampleEntries = []Entry{
	{
		Collection: "experience",
		Slug:       "research-fellow",
		Fields: []Field{
			{"title", "Research Fellow"},
			{"organization", "Example Institute"},
			{"role", "Research Fellow"},
			{"startDate", "2023-09"},
			{"summary", "Replace this entry with your own experience."},
			{"tags", []string{"science"}},
		},
		Body: "Describe what you worked on and what came out of it.\n",
	},
	{
		Collection: "work",
		Slug:       "example-project",
		Fields: []Field{
			{"title", "Example Project"},
			{"type", "project"},
			{"year", 2024},
			{"summary", "Replace this entry with your own project."},
			{"tags", []string{"tech"}},
			{"technologies", []string{"Go"}},
		},
		Body: "## Overview\n\nWhat the project does and why it matters.\n",
	},
}

// Site writes the default data files, the content and passthrough
// directories and a few sample entries below cfg.SourceDir. Existing files
// are never overwritten.
func Site(cfg *config.Config) (*Result, error) {
	r := &Result{}

	files, err := schema.DefaultDataFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.writeFile(cfg.DataPath(name), files[name]); err != nil {
			return nil, err
		}
	}

	var dirs []string
	for _, col := range cfg.Collections {
		dirs = append(dirs, content.GlobDir(col.Glob))
	}
	for src := range cfg.Passthrough {
		dirs = append(dirs, src)
	}
	dirs = append(dirs, cfg.IncludesDir)
	sort.Strings(dirs)
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(cfg.SourceDir, filepath.FromSlash(d)), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	pagesDir := filepath.Join(cfg.SourceDir, filepath.FromSlash(content.GlobDir(cfg.PagesGlob)))
	for name, body := range samplePages {
		if err := r.writeFile(filepath.Join(pagesDir, name), []byte(body)); err != nil {
			return nil, err
		}
	}

	for _, e := range sampleEntries {
		path, err := EntryPath(cfg, e.Collection, e.Slug)
		if err != nil {
			// The collection was renamed or removed from the config.
			continue
		}
		data, err := e.Render()
		if err != nil {
			return nil, err
		}
		if err := r.writeFile(path, data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Result) writeFile(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		r.Skipped = append(r.Skipped, path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	r.Created = append(r.Created, path)
	return nil
}
