package domain

import "fmt"

const (
	// PreambleTitle is the synthetic title given to content that appears
	// before the first heading of a document.
	PreambleTitle = "(preamble)"

	// PreambleLevel is the heading level of the synthetic preamble section.
	PreambleLevel = 0
)

// CodeBlock is a fenced code block captured inside a section.
type CodeBlock struct {
	// Language is the language tag from the fence info-string, empty if none.
	Language string `json:"language,omitempty"`

	// Value is the fenced content without the fence delimiter lines.
	// Internal formatting is preserved verbatim; the trailing newline is trimmed.
	Value string `json:"value"`
}

// Section is a heading-delimited unit of a markdown document. Sections form
// a flat ordered sequence; Level is metadata only, no heading tree is built.
type Section struct {
	// Title is the heading text with '#' markers and surrounding whitespace stripped.
	Title string `json:"title"`

	// Level is the count of leading '#' characters (1..6), or PreambleLevel
	// for the synthetic preamble section.
	Level int `json:"level"`

	// BodyText holds one entry per contiguous run of non-blank prose lines.
	// Blank lines separate blocks and are not content.
	BodyText []string `json:"body_text"`

	// CodeBlocks holds fenced code blocks in the order their fences closed.
	CodeBlocks []CodeBlock `json:"code_blocks"`
}

// FileSectionRecord is a Section stamped with the path of the file it came from.
type FileSectionRecord struct {
	FilePath string `json:"file_path"`
	Section
}

// Index is the ordered collection of all section records across all inputs.
// Ordering is input order, then document order within each file.
type Index []FileSectionRecord

// DocumentElement is the wire shape of one section in the emitted JSON array.
// Code blocks are flattened to their values; the language tag is not part of
// the wire contract.
type DocumentElement struct {
	FilePath   string   `json:"file_path"`
	Header     string   `json:"header"`
	TextBlocks []string `json:"text_blocks"`
	CodeBlocks []string `json:"code_blocks"`
}

// Element converts a record to its wire shape. Slices are never nil so the
// JSON output always carries arrays.
func (r FileSectionRecord) Element() DocumentElement {
	texts := r.BodyText
	if texts == nil {
		texts = []string{}
	}
	codes := make([]string, 0, len(r.CodeBlocks))
	for _, cb := range r.CodeBlocks {
		codes = append(codes, cb.Value)
	}
	return DocumentElement{
		FilePath:   r.FilePath,
		Header:     r.Title,
		TextBlocks: texts,
		CodeBlocks: codes,
	}
}

// SectionDocument represents an indexed section in the Bleve search index.
type SectionDocument struct {
	// ID combines the file path and the section's ordinal within that file.
	// Format: "docs/guide.md#3"
	ID string `json:"id"`

	// FilePath is the originating file path as supplied or discovered.
	FilePath string `json:"file_path"`

	// Header is the section title, empty-ish only for the preamble sentinel.
	Header string `json:"header"`

	// Level is the heading level, 0 for the preamble section.
	Level int `json:"level"`

	// Content is the searchable text: body blocks and code values joined.
	Content string `json:"content"`

	// Languages lists the distinct code block language tags in the section.
	Languages []string `json:"languages"`

	// Ordinal is the section's position within its file, starting at 0.
	Ordinal int `json:"ordinal"`
}

// Bleve field name constants for consistent field references in queries and mappings.
const (
	SectionFieldID        = "id"
	SectionFieldFilePath  = "file_path"
	SectionFieldHeader    = "header"
	SectionFieldLevel     = "level"
	SectionFieldContent   = "content"
	SectionFieldLanguages = "languages"
	SectionFieldOrdinal   = "ordinal"
)

// SectionID builds the search document ID for a section of a file.
func SectionID(filePath string, ordinal int) string {
	return fmt.Sprintf("%s#%d", filePath, ordinal)
}
