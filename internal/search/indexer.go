package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/mdsect/mdsect/internal/domain"
)

const (
	// IndexDirName is the on-disk name of the Bleve index directory.
	IndexDirName = "sections.bleve"

	// MaxBatchSize is the maximum number of section documents per batch.
	MaxBatchSize = 500

	// MaxBatchBytes is the maximum content bytes per batch (10MB).
	MaxBatchBytes = 10 * 1024 * 1024
)

// Indexer manages the Bleve index for section documents.
type Indexer struct {
	baseDir string
}

// NewIndexer creates a new indexer rooted at baseDir.
func NewIndexer(baseDir string) *Indexer {
	return &Indexer{baseDir: baseDir}
}

// IndexPath returns the path of the Bleve index directory.
func (i *Indexer) IndexPath() string {
	return filepath.Join(i.baseDir, IndexDirName)
}

// CreateIndexMapping creates the Bleve index mapping for section documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Header - analyzed, stored; boosted at query time
	headerField := bleve.NewTextFieldMapping()
	headerField.Analyzer = standard.Name
	headerField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldHeader, headerField)

	// Content - analyzed for full-text search, term vectors for highlighting
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = true
	contentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldContent, contentField)

	// FilePath - keyword (not analyzed), stored for retrieval and filtering
	pathField := bleve.NewTextFieldMapping()
	pathField.Analyzer = keyword.Name
	pathField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldFilePath, pathField)

	// Languages - keyword, one term per code block language
	langField := bleve.NewTextFieldMapping()
	langField.Analyzer = keyword.Name
	langField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldLanguages, langField)

	// Level and Ordinal - numeric, stored; ordinal drives document-order sorts
	levelField := bleve.NewNumericFieldMapping()
	levelField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldLevel, levelField)

	ordinalField := bleve.NewNumericFieldMapping()
	ordinalField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldOrdinal, ordinalField)

	// ID - stored but not indexed (the document ID carries it)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.SectionFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// OpenForRead opens the existing index for reading.
func (i *Indexer) OpenForRead() (bleve.Index, error) {
	index, err := bleve.Open(i.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return index, nil
}

// Exists checks if an index is present on disk.
func (i *Indexer) Exists() bool {
	_, err := os.Stat(i.IndexPath())
	return err == nil
}

// Delete removes the index from disk.
func (i *Indexer) Delete() error {
	return os.RemoveAll(i.IndexPath())
}

// Build replaces the on-disk index with the given aggregated section index.
// Returns the number of section documents indexed.
func (i *Indexer) Build(index domain.Index) (count int, err error) {
	// A build is a full snapshot of one run; replace rather than merge.
	if err := i.Delete(); err != nil {
		return 0, fmt.Errorf("failed to remove previous index: %w", err)
	}

	bi, err := bleve.New(i.IndexPath(), CreateIndexMapping())
	if err != nil {
		return 0, fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		if cerr := bi.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	batch := bi.NewBatch()
	batchSize := 0
	batchBytes := 0
	ordinals := make(map[string]int)

	for _, record := range index {
		ordinal := ordinals[record.FilePath]
		ordinals[record.FilePath] = ordinal + 1

		doc := SectionDocumentFor(record, ordinal)
		if err := batch.Index(doc.ID, doc); err != nil {
			return count, fmt.Errorf("failed to index %s: %w", doc.ID, err)
		}
		batchSize++
		batchBytes += len(doc.Content)

		if batchSize >= MaxBatchSize || batchBytes >= MaxBatchBytes {
			if err := bi.Batch(batch); err != nil {
				return count, fmt.Errorf("batch index failed: %w", err)
			}
			count += batchSize
			batch = bi.NewBatch()
			batchSize = 0
			batchBytes = 0
		}
	}

	if batchSize > 0 {
		if err := bi.Batch(batch); err != nil {
			return count, fmt.Errorf("final batch index failed: %w", err)
		}
		count += batchSize
	}

	return count, nil
}

// SectionDocumentFor converts a section record to its search document shape.
// Body blocks and code values are folded into one searchable content field.
func SectionDocumentFor(r domain.FileSectionRecord, ordinal int) domain.SectionDocument {
	parts := make([]string, 0, len(r.BodyText)+len(r.CodeBlocks))
	parts = append(parts, r.BodyText...)

	seen := make(map[string]bool)
	var languages []string
	for _, cb := range r.CodeBlocks {
		parts = append(parts, cb.Value)
		if cb.Language != "" && !seen[cb.Language] {
			seen[cb.Language] = true
			languages = append(languages, cb.Language)
		}
	}

	return domain.SectionDocument{
		ID:        domain.SectionID(r.FilePath, ordinal),
		FilePath:  r.FilePath,
		Header:    r.Title,
		Level:     r.Level,
		Content:   strings.Join(parts, "\n\n"),
		Languages: languages,
		Ordinal:   ordinal,
	}
}
