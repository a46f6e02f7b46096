package markdown

import "testing"

// collect drains a scanner into a slice for assertions.
func collect(src string) []Event {
	sc := NewScanner(src)
	var events []Event
	for {
		ev, ok := sc.Next()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func TestScanner_Headings(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		kind  EventKind
		level int
		title string
	}{
		{"level 1", "# Title", EventHeading, 1, "Title"},
		{"level 6", "###### Deep", EventHeading, 6, "Deep"},
		{"trailing spaces trimmed", "## Spaced   ", EventHeading, 2, "Spaced"},
		{"tab after markers", "#\tTabbed", EventHeading, 1, "Tabbed"},
		{"seven hashes is content", "####### nope", EventContent, 0, ""},
		{"no whitespace is content", "#nope", EventContent, 0, ""},
		{"hash only is content", "#", EventContent, 0, ""},
		{"plain line", "just text", EventContent, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(tt.line)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			ev := events[0]
			if ev.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.kind)
			}
			if ev.Kind == EventHeading {
				if ev.Level != tt.level {
					t.Errorf("Level = %d, want %d", ev.Level, tt.level)
				}
				if ev.Title != tt.title {
					t.Errorf("Title = %q, want %q", ev.Title, tt.title)
				}
			}
		})
	}
}

func TestScanner_FenceOpenVariants(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		opens    bool
		language string
	}{
		{"backticks", "```", true, ""},
		{"backticks with language", "```go", true, "go"},
		{"language and meta keeps first field", "```go title=main.go", true, "go"},
		{"tildes", "~~~python", true, "python"},
		{"four backticks", "````", true, ""},
		{"indented fence", "  ```sh", true, "sh"},
		{"two backticks is content", "``", false, ""},
		{"inline code is content", "use `go build` here", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(tt.line)
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			ev := events[0]
			if tt.opens {
				if ev.Kind != EventFenceStart {
					t.Fatalf("Kind = %v, want EventFenceStart", ev.Kind)
				}
				if ev.Language != tt.language {
					t.Errorf("Language = %q, want %q", ev.Language, tt.language)
				}
			} else if ev.Kind != EventContent {
				t.Errorf("Kind = %v, want EventContent", ev.Kind)
			}
		})
	}
}

func TestScanner_FenceSuppressesHeadings(t *testing.T) {
	src := "```\n# not a heading\n```\n"
	events := collect(src)

	want := []EventKind{EventFenceStart, EventFenceContent, EventFenceEnd}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Errorf("event %d: Kind = %v, want %v", i, events[i].Kind, kind)
		}
	}
	if events[1].Line != "# not a heading" {
		t.Errorf("fence content = %q, want verbatim line", events[1].Line)
	}
}

func TestScanner_FenceCloseRequiresMatchingMarker(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		closed bool
	}{
		{"three closes three", "```\nx\n```", true},
		{"three does not close four", "````\nx\n```", false},
		{"five closes four", "````\nx\n`````", true},
		{"tilde does not close backtick", "```\nx\n~~~", false},
		{"backtick does not close tilde", "~~~\nx\n```", false},
		{"indented close", "```\nx\n  ```", true},
		{"marker plus trailing text stays content", "```\nx\n``` tail", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScanner(tt.src)
			closed := false
			for {
				ev, ok := sc.Next()
				if !ok {
					break
				}
				if ev.Kind == EventFenceEnd {
					closed = true
				}
			}
			if closed != tt.closed {
				t.Errorf("closed = %v, want %v", closed, tt.closed)
			}
			if sc.InFence() == tt.closed {
				t.Errorf("InFence() = %v after scan, want %v", sc.InFence(), !tt.closed)
			}
		})
	}
}

func TestScanner_UnterminatedFenceEmitsContentToEOF(t *testing.T) {
	events := collect("```go\nline one\nline two\n")

	want := []EventKind{EventFenceStart, EventFenceContent, EventFenceContent}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	if events[2].Line != "line two" {
		t.Errorf("last fence line = %q, want %q", events[2].Line, "line two")
	}
}

func TestScanner_PreservesLineOrder(t *testing.T) {
	src := "# A\ntext\n\n## B\nmore"
	events := collect(src)

	want := []EventKind{EventHeading, EventContent, EventContent, EventHeading, EventContent}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Errorf("event %d: Kind = %v, want %v", i, events[i].Kind, kind)
		}
	}
}
