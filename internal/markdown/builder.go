package markdown

import (
	"strings"

	"github.com/mdsect/mdsect/internal/domain"
)

// Sectionize parses a markdown document into its flat ordered section
// sequence. Every input is parseable: malformed constructs (unterminated
// fences, over-long '#' runs, headings inside fences) degrade to ordinary
// content rather than failing.
func Sectionize(src string) []domain.Section {
	sc := NewScanner(src)
	b := &builder{}
	for {
		ev, ok := sc.Next()
		if !ok {
			break
		}
		b.feed(ev)
	}
	return b.finish()
}

// fenceAccum accumulates the lines of one open code fence.
type fenceAccum struct {
	language string
	lines    []string
}

// builder folds the scanner's event stream into finalized sections. State is
// local to one document: the open section, a pending prose buffer, and the
// active fence accumulator.
type builder struct {
	sections []domain.Section
	current  *domain.Section
	pending  []string
	fence    *fenceAccum
}

func (b *builder) feed(ev Event) {
	switch ev.Kind {
	case EventHeading:
		b.flushText()
		b.closeCurrent()
		b.current = &domain.Section{Title: ev.Title, Level: ev.Level}

	case EventContent:
		if strings.TrimSpace(ev.Line) == "" {
			// Blank lines separate blocks; consecutive blanks collapse.
			b.flushText()
			return
		}
		b.ensureSection()
		b.pending = append(b.pending, ev.Line)

	case EventFenceStart:
		b.ensureSection()
		b.flushText()
		b.fence = &fenceAccum{language: ev.Language}

	case EventFenceContent:
		b.fence.lines = append(b.fence.lines, ev.Line)

	case EventFenceEnd:
		b.closeFence()
	}
}

// finish closes any open fence (a document ending mid-fence is not an error)
// and flushes the final section.
func (b *builder) finish() []domain.Section {
	if b.fence != nil {
		b.closeFence()
	}
	b.flushText()
	b.closeCurrent()
	return b.sections
}

// ensureSection opens the synthetic preamble section when content appears
// before the first heading.
func (b *builder) ensureSection() {
	if b.current == nil {
		b.current = &domain.Section{
			Title: domain.PreambleTitle,
			Level: domain.PreambleLevel,
		}
	}
}

// flushText turns the pending prose buffer into one trimmed body block.
// Buffers that trim to nothing produce no block.
func (b *builder) flushText() {
	if len(b.pending) == 0 {
		return
	}
	block := strings.TrimSpace(strings.Join(b.pending, "\n"))
	b.pending = nil
	if block == "" {
		return
	}
	b.current.BodyText = append(b.current.BodyText, block)
}

// closeFence turns the fence accumulator into a CodeBlock. Joining the
// content lines drops the trailing newline while keeping interior blank
// lines and indentation exact.
func (b *builder) closeFence() {
	cb := domain.CodeBlock{
		Language: b.fence.language,
		Value:    strings.Join(b.fence.lines, "\n"),
	}
	b.fence = nil
	b.current.CodeBlocks = append(b.current.CodeBlocks, cb)
}

// closeCurrent finalizes the open section, if any. Heading-only sections are
// kept even when empty.
func (b *builder) closeCurrent() {
	if b.current == nil {
		return
	}
	b.sections = append(b.sections, *b.current)
	b.current = nil
}
