package site

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qtpi-bonding/folio/internal/buildcache"
	"github.com/qtpi-bonding/folio/internal/walker"
)

// OutputCache remembers the hash of every written output file.
// *buildcache.Store satisfies it.
type OutputCache interface {
	Lookup(ctx context.Context, path string) (*buildcache.Output, error)
	Record(ctx context.Context, buildID, path, hash string, size int64) error
}

// writer writes output files, skipping those whose bytes are unchanged.
type writer struct {
	ctx     context.Context
	dir     string
	cache   OutputCache
	buildID string

	written int
	skipped int
}

// write stores data at the output-relative slash path rel.
func (w *writer) write(rel string, data []byte) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(w.dir, filepath.FromSlash(rel))
	if r, err := filepath.Rel(w.dir, dest); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to write %s outside %s", rel, w.dir)
	}
	hash := walker.HashBytes(data)

	unchanged, err := w.unchanged(rel, dest, hash)
	if err != nil {
		return err
	}
	if unchanged {
		w.skipped++
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if w.cache != nil {
		if err := w.cache.Record(w.ctx, w.buildID, rel, hash, int64(len(data))); err != nil {
			return fmt.Errorf("recording %s: %w", rel, err)
		}
	}
	w.written++
	return nil
}

// unchanged compares against the cache when there is one, else against the
// file on disk. A file deleted since the last build is always rewritten.
func (w *writer) unchanged(rel, dest, hash string) (bool, error) {
	if _, err := os.Stat(dest); err != nil {
		return false, nil
	}
	if w.cache == nil {
		existing, err := walker.HashFile(dest)
		return err == nil && existing == hash, nil
	}
	prev, err := w.cache.Lookup(w.ctx, rel)
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", rel, err)
	}
	return prev != nil && prev.Hash == hash, nil
}

// readTree reads every file below src, except editor scratch files, as
// assets placed under the output-relative directory dst.
func readTree(src, dst string) ([]Asset, error) {
	files, err := walker.Walk(walker.WalkerConfig{RootDir: src, Exclude: walker.ScratchPatterns})
	if err != nil {
		return nil, err
	}
	out := make([]Asset, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		out = append(out, Asset{Path: path.Join(filepath.ToSlash(dst), f.RelPath), Data: data})
	}
	return out, nil
}
