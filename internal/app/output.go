package app

import (
	"encoding/json"
	"io"

	"github.com/mdsect/mdsect/internal/domain"
)

// WriteIndex writes the section index to w as a JSON array of section documents
func WriteIndex(w io.Writer, index domain.Index, pretty bool) error {
	elements := make([]domain.DocumentElement, 0, len(index))
	for _, record := range index {
		elements = append(elements, record.Element())
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(elements)
}
