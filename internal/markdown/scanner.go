package markdown

import "strings"

// EventKind classifies a single line of markdown input.
type EventKind int

const (
	// EventContent is a plain line outside any code fence.
	EventContent EventKind = iota

	// EventHeading is an ATX heading line (1-6 '#' plus whitespace) outside a fence.
	EventHeading

	// EventFenceStart opens a code fence.
	EventFenceStart

	// EventFenceEnd closes the active code fence.
	EventFenceEnd

	// EventFenceContent is a verbatim line inside an open fence.
	EventFenceContent
)

// Event is one line-level lexical event.
type Event struct {
	Kind EventKind

	// Line carries the raw line for EventContent and EventFenceContent.
	Line string

	// Level and Title are set for EventHeading.
	Level int
	Title string

	// Language is the info-string language tag for EventFenceStart, empty if none.
	Language string
}

// openFence records the marker character and run length of the active fence.
// Only a line of the same marker with an equal or longer run closes it.
type openFence struct {
	marker byte
	length int
}

// Scanner lexes one markdown document into an ordered sequence of events.
// It is a forward-only, single-pass scanner; create a new one per document.
type Scanner struct {
	lines []string
	pos   int
	fence *openFence
}

// NewScanner creates a scanner over the full text of one document.
func NewScanner(src string) *Scanner {
	lines := strings.Split(src, "\n")
	// A trailing newline produces a phantom empty final line; drop it so
	// fence content at end-of-input stays exact.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &Scanner{lines: lines}
}

// Next returns the next event, or ok=false at end of input. A document that
// ends inside an open fence simply stops emitting; the implicit close is the
// consumer's concern.
func (s *Scanner) Next() (Event, bool) {
	if s.pos >= len(s.lines) {
		return Event{}, false
	}
	line := s.lines[s.pos]
	s.pos++

	if s.fence != nil {
		if closesFence(line, s.fence) {
			s.fence = nil
			return Event{Kind: EventFenceEnd}, true
		}
		return Event{Kind: EventFenceContent, Line: line}, true
	}

	if marker, length, lang, ok := parseFenceOpen(line); ok {
		s.fence = &openFence{marker: marker, length: length}
		return Event{Kind: EventFenceStart, Language: lang}, true
	}

	if level, title, ok := parseHeading(line); ok {
		return Event{Kind: EventHeading, Level: level, Title: title}, true
	}

	return Event{Kind: EventContent, Line: line}, true
}

// InFence reports whether the scanner is currently inside an open fence.
func (s *Scanner) InFence() bool {
	return s.fence != nil
}

// parseHeading recognizes ATX headings: one to six '#' characters followed by
// at least one whitespace character. Seven or more '#' is not a heading.
func parseHeading(line string) (level int, title string, ok bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n < 1 || n > 6 {
		return 0, "", false
	}
	if n >= len(line) || (line[n] != ' ' && line[n] != '\t') {
		return 0, "", false
	}
	return n, strings.TrimSpace(line[n:]), true
}

// parseFenceOpen recognizes a fence-opening line: optional leading whitespace,
// then three or more backticks or tildes, then an optional info-string whose
// first field is the language tag.
func parseFenceOpen(line string) (marker byte, length int, language string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return 0, 0, "", false
	}
	m := trimmed[0]
	if m != '`' && m != '~' {
		return 0, 0, "", false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == m {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(trimmed[n:])
	if fields := strings.Fields(info); len(fields) > 0 {
		language = fields[0]
	}
	return m, n, language, true
}

// closesFence reports whether a line terminates the given open fence: the
// same marker character with a run at least as long, and nothing else on the
// line. Shorter or mismatched-marker lines are ordinary fenced content.
func closesFence(line string, f *openFence) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < f.length {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != f.marker {
			return false
		}
	}
	return true
}
