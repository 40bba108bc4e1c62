package walker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path        string    // Path on disk.
	RelPath     string    // Slash-separated path relative to the root directory.
	Size        int64     // File size in bytes.
	ModTime     time.Time // Last modification time.
	ContentHash string    // SHA-256 hex digest of the file content.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir string   // Root directory to walk.
	Include []string // Glob patterns, only matching files are included.
	Exclude []string // Glob patterns, matching files are excluded.
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// metadata for every regular file that passes filtering. A missing root
// yields no files and no error.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root := config.RootDir
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []FileInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != root && IsIgnoredName(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || IsIgnoredName(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if !config.allowed(relPath) {
			return nil
		}

		fi, err := describe(path, filepath.ToSlash(relPath))
		if err != nil {
			return err
		}
		files = append(files, fi)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// Glob returns the files under root matching a doublestar pattern such as
// "content/work/*.md", sorted by relative path.
func Glob(root, pattern string) ([]FileInfo, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("walker: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	files := make([]FileInfo, 0, len(matches))
	for _, rel := range matches {
		fi, err := describe(filepath.Join(root, filepath.FromSlash(rel)), rel)
		if err != nil {
			return nil, err
		}
		files = append(files, fi)
	}
	return files, nil
}

// Dirs returns root and every directory below it that is not excluded.
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && IsIgnoredName(d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: listing dirs: %w", err)
	}
	return dirs, nil
}

func describe(path, relPath string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("walker: stat %s: %w", path, err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("walker: hashing %s: %w", path, err)
	}
	return FileInfo{
		Path:        path,
		RelPath:     relPath,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentHash: hash,
	}, nil
}

// HashFile computes the SHA-256 digest of the given file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
