package docs

import (
	"path/filepath"
	"strings"
)

// DefaultExtensions are the markdown file extensions indexed by default.
var DefaultExtensions = []string{"md", "markdown"}

// FileFilter decides which discovered files are indexable markdown.
type FileFilter struct {
	extensions  map[string]bool
	maxFileSize int64
}

// NewFileFilter creates a filter for the given extensions (without leading
// dots, case-insensitive) and maximum file size in bytes. An empty extension
// list falls back to DefaultExtensions.
func NewFileFilter(extensions []string, maxFileSize int64) *FileFilter {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = true
		}
	}
	return &FileFilter{
		extensions:  set,
		maxFileSize: maxFileSize,
	}
}

// MatchesExtension reports whether the path carries an indexable extension.
func (f *FileFilter) MatchesExtension(path string) bool {
	return f.extensions[strings.ToLower(FileExtension(path))]
}

// WithinSizeLimit reports whether a file of the given size may be indexed.
// A non-positive limit disables the size check.
func (f *FileFilter) WithinSizeLimit(size int64) bool {
	return f.maxFileSize <= 0 || size <= f.maxFileSize
}

// MaxFileSize returns the configured size limit in bytes.
func (f *FileFilter) MaxFileSize() int64 {
	return f.maxFileSize
}

// IsBinary checks if the content appears to be binary by looking for null
// bytes in the first 512 bytes. This is the heuristic git uses.
func IsBinary(content []byte) bool {
	checkLen := min(len(content), 512)

	for i := range checkLen {
		if content[i] == 0 {
			return true
		}
	}
	return false
}

// FileExtension returns the file extension without the leading dot.
// Returns empty string if no extension.
func FileExtension(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimPrefix(ext, ".")
}
