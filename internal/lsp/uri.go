package lsp

import (
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// SourceExtensions are the file extensions the server analyzes.
var SourceExtensions = []string{".js", ".ts", ".quill"}

// DocumentPath returns the local file path for a file:// URI, or "" for
// other schemes (untitled buffers, remote documents).
func DocumentPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}

// IsSourceURI reports whether uri names a script the server should analyze.
// The scheme does not matter; an unsaved buffer is analyzed by extension too.
func IsSourceURI(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	return slices.Contains(SourceExtensions, strings.ToLower(path.Ext(p)))
}
