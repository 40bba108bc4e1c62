package content

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qtpi-bonding/folio/internal/config"
	"github.com/qtpi-bonding/folio/internal/walker"
)

// Library holds every loaded collection in configuration order.
type Library struct {
	Root        string
	Names       []string
	Collections map[string][]*Item
	Pages       []*Item

	// Missing maps collection names to content directories that do not exist.
	Missing map[string]string
}

// Items returns the sorted items of one collection.
func (l *Library) Items(name string) []*Item { return l.Collections[name] }

// All returns every collection item in collection order, without pages.
func (l *Library) All() []*Item {
	var all []*Item
	for _, name := range l.Names {
		all = append(all, l.Collections[name]...)
	}
	return all
}

// Count returns the number of collection items.
func (l *Library) Count() int {
	n := 0
	for _, items := range l.Collections {
		n += len(items)
	}
	return n
}

// Load reads and parses every collection under root. Files that fail to
// parse are kept with Err set. Missing collection directories are recorded
// in Library.Missing rather than returned as errors.
func Load(root string, collections []config.Collection) (*Library, error) {
	lib := &Library{
		Root:        root,
		Collections: make(map[string][]*Item, len(collections)),
		Missing:     map[string]string{},
	}

	for _, col := range collections {
		lib.Names = append(lib.Names, col.Name)

		dir := filepath.Join(root, filepath.FromSlash(GlobDir(col.Glob)))
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			lib.Missing[col.Name] = dir
			lib.Collections[col.Name] = nil
			continue
		}

		files, err := walker.Glob(root, col.Glob)
		if err != nil {
			return nil, fmt.Errorf("loading collection %s: %w", col.Name, err)
		}

		items := make([]*Item, 0, len(files))
		for _, f := range files {
			it := loadFile(f)
			it.Collection = col.Name
			if it.URL == "" {
				it.URL = "/" + col.Name + "/" + it.Slug + "/"
			}
			items = append(items, it)
		}
		Sort(col.Name, items)
		lib.Collections[col.Name] = items
	}

	return lib, nil
}

// LoadPages reads standalone pages matching glob under root. The URL of a
// page follows its path below the glob's static prefix: index.md maps to /,
// about.md to /about/.
func LoadPages(root, glob string) ([]*Item, error) {
	if glob == "" {
		return nil, nil
	}
	files, err := walker.Glob(root, glob)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	prefix := GlobDir(glob)
	pages := make([]*Item, 0, len(files))
	for _, f := range files {
		it := loadFile(f)
		it.Collection = PageCollection
		if it.URL == "" {
			it.URL = pageURL(strings.TrimPrefix(strings.TrimPrefix(f.RelPath, prefix), "/"))
		}
		pages = append(pages, it)
	}
	return pages, nil
}

func loadFile(f walker.FileInfo) *Item {
	source, err := os.ReadFile(f.Path)
	if err != nil {
		return &Item{SourcePath: f.Path, RelPath: f.RelPath, Slug: slugFromPath(f.Path), ModTime: f.ModTime, Data: map[string]any{}, Err: err}
	}
	it, err := Parse(f.Path, source)
	if err != nil {
		return &Item{SourcePath: f.Path, RelPath: f.RelPath, Slug: slugFromPath(f.Path), ModTime: f.ModTime, Data: map[string]any{}, Hash: f.ContentHash, Err: err}
	}
	it.RelPath = f.RelPath
	it.ModTime = f.ModTime
	if p := strings.TrimSpace(it.String("permalink")); p != "" {
		it.URL = normalizePermalink(p)
	}
	return it
}

// GlobDir returns the directory part of a glob before its first
// wildcard, e.g. "content/work" for "content/work/*.md".
func GlobDir(glob string) string {
	glob = filepath.ToSlash(glob)
	if i := strings.IndexAny(glob, "*?[{"); i >= 0 {
		glob = glob[:i]
		if j := strings.LastIndex(glob, "/"); j >= 0 {
			return glob[:j]
		}
		return ""
	}
	return path.Dir(glob)
}

func pageURL(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(rel) == "index" {
		rel = strings.TrimSuffix(rel, "index")
	}
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return "/"
	}
	return "/" + rel + "/"
}

func normalizePermalink(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") && path.Ext(p) == "" {
		p += "/"
	}
	return p
}
