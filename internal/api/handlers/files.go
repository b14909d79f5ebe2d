package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/video-stream/subreflow/internal/storage"
)

// extractPath extracts and URL-decodes the wildcard path from chi router
func extractPath(r *http.Request) string {
	path := chi.URLParam(r, "*")
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return path
	}
	decoded = strings.TrimPrefix(decoded, "/")
	decoded = strings.TrimSuffix(decoded, "/")
	return decoded
}

type FilesHandler struct {
	mediaPath  string
	outputPath string
}

func NewFilesHandler(mediaPath, outputPath string) *FilesHandler {
	return &FilesHandler{mediaPath: mediaPath, outputPath: outputPath}
}

// GetTree lists directories and subtitle files under the media root.
func (h *FilesHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	if path == "" {
		path = "."
	}

	entries, err := storage.ListDirectory(h.mediaPath, path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrPermission):
			jsonError(w, "path outside media root", http.StatusForbidden)
		case errors.Is(err, os.ErrNotExist):
			jsonError(w, "directory not found", http.StatusNotFound)
		default:
			jsonError(w, "failed to list directory", http.StatusInternalServerError)
		}
		return
	}
	if entries == nil {
		entries = []*storage.FileEntry{}
	}

	jsonResponse(w, map[string]interface{}{
		"path":    path,
		"entries": entries,
	}, http.StatusOK)
}

func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	results, err := storage.Search(h.mediaPath, q, 50)
	if err != nil {
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*storage.FileEntry{}
	}

	jsonResponse(w, map[string]interface{}{
		"query":   q,
		"results": results,
	}, http.StatusOK)
}

// GetOutput downloads a reflowed file written by a job.
func (h *FilesHandler) GetOutput(w http.ResponseWriter, r *http.Request) {
	path := extractPath(r)
	fullPath, err := storage.ResolvePath(h.outputPath, path)
	if err != nil {
		jsonError(w, "path outside output root", http.StatusForbidden)
		return
	}
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(fullPath)+`"`)
	http.ServeFile(w, r, fullPath)
}
