package docs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// UnboundedDepth disables the traversal depth limit.
const UnboundedDepth = -1

// Walker discovers markdown files under a set of input paths with a
// depth-bounded recursive traversal. Inputs given directly sit at depth 0;
// each directory level below adds one.
type Walker struct {
	filter   *FileFilter
	maxDepth int
}

// NewWalker creates a walker. A negative maxDepth means unbounded recursion.
func NewWalker(filter *FileFilter, maxDepth int) *Walker {
	return &Walker{
		filter:   filter,
		maxDepth: maxDepth,
	}
}

// Discover walks every input path in order and returns the discovered
// markdown file paths: inputs in the order supplied, directory entries in
// lexical order. Non-markdown files are skipped silently; unreadable
// directories fail the walk.
func (w *Walker) Discover(inputs []string) ([]string, error) {
	var paths []string
	for _, input := range inputs {
		if err := w.walk(input, 0, &paths); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func (w *Walker) walk(path string, depth int, paths *[]string) error {
	if w.maxDepth >= 0 && depth > w.maxDepth {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", path, err)
		}
		// os.ReadDir returns entries in lexical order, which keeps
		// discovery deterministic.
		for _, entry := range entries {
			// Symlinked entries are skipped to keep the walk cycle-free.
			if entry.Type()&os.ModeSymlink != 0 {
				continue
			}
			if err := w.walk(filepath.Join(path, entry.Name()), depth+1, paths); err != nil {
				return err
			}
		}
		return nil
	}

	if !w.filter.MatchesExtension(path) {
		return nil
	}
	if !w.filter.WithinSizeLimit(info.Size()) {
		slog.Warn("Skipping oversized markdown file", "path", path, "size", info.Size())
		return nil
	}

	*paths = append(*paths, path)
	return nil
}
