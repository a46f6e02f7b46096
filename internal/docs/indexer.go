package docs

import (
	"log/slog"

	"github.com/mdsect/mdsect/internal/domain"
	"github.com/mdsect/mdsect/internal/markdown"
)

// IndexSource sectionizes one source document and stamps every resulting
// section with the originating file path. Sections come back in document
// order and are immutable once returned.
func IndexSource(src Source) []domain.FileSectionRecord {
	sections := markdown.Sectionize(src.Content)
	records := make([]domain.FileSectionRecord, 0, len(sections))
	for _, s := range sections {
		records = append(records, domain.FileSectionRecord{
			FilePath: src.Path,
			Section:  s,
		})
	}
	return records
}

// IndexPath loads a file and sectionizes it. Read failures surface as
// *ReadError; sectionizing itself cannot fail. Files that sniff as binary
// despite a markdown extension are skipped with a warning.
func IndexPath(path string) ([]domain.FileSectionRecord, error) {
	src, err := LoadSource(path)
	if err != nil {
		return nil, err
	}
	if IsBinary([]byte(src.Content)) {
		slog.Warn("Skipping binary file", "path", path)
		return nil, nil
	}
	return IndexSource(src), nil
}
