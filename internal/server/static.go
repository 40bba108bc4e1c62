package server

import (
	"net/http"
	"os"
	"path"
)

// staticHandler serves the built site without caching. Directories are
// served only through their index.html; there are no listings.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(indexOnlyFS{http.Dir(dir)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

type indexOnlyFS struct {
	fs http.FileSystem
}

func (f indexOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := f.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			file.Close()
			return nil, os.ErrNotExist
		}
		index.Close()
	}
	return file, nil
}
