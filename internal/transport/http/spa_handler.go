package http

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// SPAHandler serves a Single Page Application from a static filesystem.
// It serves static files if they exist, otherwise it falls back to index.html.
type SPAHandler struct {
	StaticFS fs.FS
}

// emptyFS is served when no dashboard build is configured.
type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

func (h SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.StaticFS == nil {
		h.StaticFS = emptyFS{}
	}

	// r.URL.Path here is already stripped of the prefix if using http.StripPrefix
	path := strings.TrimPrefix(r.URL.Path, "/")

	// If path is empty, it means we are at root (e.g. /admin/), serve index.html
	if path == "" {
		h.serveIndex(w)
		return
	}

	// Check if the file exists in the static directory
	f, err := h.StaticFS.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// File does not exist, serve index.html for client-side routing
			h.serveIndex(w)
			return
		}
		// Some other error
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	// Directories are client routes too.
	stat, err := f.Stat()
	if err == nil && stat.IsDir() {
		h.serveIndex(w)
		return
	}

	// File exists and is a file, serve it
	http.FileServer(http.FS(h.StaticFS)).ServeHTTP(w, r)
}

func (h SPAHandler) serveIndex(w http.ResponseWriter) {
	content, err := fs.ReadFile(h.StaticFS, "index.html")
	if err != nil {
		http.Error(w, "index.html not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
