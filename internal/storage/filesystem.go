package storage

import (
	"os"
	"path/filepath"
	"strings"
)

type FileEntry struct {
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	IsDir    bool         `json:"is_dir"`
	Size     int64        `json:"size,omitempty"`
	Children []*FileEntry `json:"children,omitempty"`
}

// Formats astisub can read. Only .srt is consumed as-is; the others are
// converted to SRT lines first.
var subtitleExtensions = map[string]bool{
	".srt": true, ".vtt": true, ".ass": true, ".ssa": true, ".stl": true, ".ttml": true,
}

func IsSubtitleFile(name string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// ResolvePath joins relativePath onto basePath and rejects anything that
// escapes basePath.
func ResolvePath(basePath, relativePath string) (string, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(filepath.Join(absBase, relativePath))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absFull)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return absFull, nil
}

// ListDirectory returns the directories and subtitle files directly under relativePath.
func ListDirectory(basePath, relativePath string) ([]*FileEntry, error) {
	fullPath, err := ResolvePath(basePath, relativePath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, err
	}

	var result []*FileEntry
	for _, entry := range entries {
		// Skip hidden files
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !entry.IsDir() && !IsSubtitleFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		fe := &FileEntry{
			Name:  entry.Name(),
			Path:  filepath.ToSlash(filepath.Join(relativePath, entry.Name())),
			IsDir: entry.IsDir(),
		}
		if !entry.IsDir() {
			fe.Size = info.Size()
		}
		result = append(result, fe)
	}
	return result, nil
}

func BuildTree(basePath, relativePath string, depth int) (*FileEntry, error) {
	entries, err := ListDirectory(basePath, relativePath)
	if err != nil {
		return nil, err
	}

	if depth > 0 {
		for _, entry := range entries {
			if !entry.IsDir {
				continue
			}
			subtree, err := BuildTree(basePath, entry.Path, depth-1)
			if err != nil {
				continue
			}
			entry.Children = subtree.Children
		}
	}

	name := filepath.Base(relativePath)
	if relativePath == "" || relativePath == "." {
		name = "root"
	}
	return &FileEntry{
		Name:     name,
		Path:     relativePath,
		IsDir:    true,
		Children: entries,
	}, nil
}
