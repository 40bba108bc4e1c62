package site

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assetsFS embed.FS

//go:embed layouts
var layoutsFS embed.FS

// Asset is one embedded static file and its output-relative path.
type Asset struct {
	Path string
	Data []byte
}

// Assets returns the embedded stylesheets and scripts, in path order.
func Assets() ([]Asset, error) {
	var out []Asset
	err := fs.WalkDir(assetsFS, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := assetsFS.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, Asset{Path: path, Data: data})
		return nil
	})
	return out, err
}
