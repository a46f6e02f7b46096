package docs

import (
	"fmt"
	"os"
)

// Source is one discovered markdown input: its path as supplied or resolved
// by the walker, and its full text content.
type Source struct {
	Path    string
	Content string
}

// ReadError indicates a discovered file's content could not be obtained.
// It is not a transient condition and is never retried.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// LoadSource reads a file into a Source. Failures surface as *ReadError.
func LoadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, &ReadError{Path: path, Err: err}
	}
	return Source{Path: path, Content: string(data)}, nil
}
