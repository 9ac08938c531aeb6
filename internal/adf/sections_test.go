package adf

import (
	"errors"
	"strings"
	"testing"
)

// sampleDoc builds a multi-section document: an h1 title, two flat h2
// sections, an h2 with a nested h3 subsection, and a trailing h2.
func sampleDoc() Document {
	return Document{
		Heading(1, "Title"),
		Paragraph("Intro paragraph."),
		Heading(2, "Section A"),
		Paragraph("Content of section A."),
		Paragraph("More A content."),
		Heading(2, "Section B"),
		Paragraph("Content of section B."),
		Heading(3, "Section B.1"),
		Paragraph("Subsection of B."),
		Heading(2, "Section C"),
		Paragraph("Content of section C."),
	}
}

func TestFindSections(t *testing.T) {
	doc := sampleDoc()
	sections := FindSections(doc)

	wantOrder := []string{"Title", "Section A", "Section B", "Section B.1", "Section C"}
	if len(sections) != len(wantOrder) {
		t.Fatalf("expected %d sections, got %d", len(wantOrder), len(sections))
	}
	for i, want := range wantOrder {
		if sections[i].Heading != want {
			t.Errorf("section %d: expected heading %q, got %q", i, want, sections[i].Heading)
		}
	}
}

func TestFindSectionsBoundaries(t *testing.T) {
	doc := sampleDoc()
	byName := make(map[string]Section)
	for _, s := range FindSections(doc) {
		byName[s.Heading] = s
	}

	tests := []struct {
		heading    string
		level      int
		start, end int
	}{
		{"Title", 1, 0, 11},      // h1 spans the whole doc
		{"Section A", 2, 2, 5},   // ends before Section B
		{"Section B", 2, 5, 9},   // includes the B.1 subsection
		{"Section B.1", 3, 7, 9}, // ends before Section C (h2)
		{"Section C", 2, 9, 11},  // runs to end of doc
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			s, ok := byName[tt.heading]
			if !ok {
				t.Fatalf("section %q not found", tt.heading)
			}
			if s.Level != tt.level {
				t.Errorf("expected level %d, got %d", tt.level, s.Level)
			}
			if s.Start != tt.start || s.End != tt.end {
				t.Errorf("expected range [%d,%d), got [%d,%d)", tt.start, tt.end, s.Start, s.End)
			}
		})
	}
}

func TestFindSectionsFlatDoc(t *testing.T) {
	doc := Document{
		Heading(1, "Title"),
		Paragraph("intro"),
		Heading(2, "A"),
		Paragraph("a1"),
		Paragraph("a2"),
		Heading(2, "B"),
		Paragraph("b1"),
	}

	sections := FindSections(doc)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	tests := []struct {
		heading    string
		start, end int
	}{
		{"Title", 0, 7},
		{"A", 2, 5},
		{"B", 5, 7},
	}
	for i, tt := range tests {
		if sections[i].Heading != tt.heading {
			t.Errorf("section %d: expected %q, got %q", i, tt.heading, sections[i].Heading)
		}
		if sections[i].Start != tt.start || sections[i].End != tt.end {
			t.Errorf("%s: expected range [%d,%d), got [%d,%d)",
				tt.heading, tt.start, tt.end, sections[i].Start, sections[i].End)
		}
	}
}

func TestFindSectionsEmpty(t *testing.T) {
	if got := FindSections(Document{}); len(got) != 0 {
		t.Errorf("expected no sections in empty doc, got %d", len(got))
	}
	if got := FindSections(Document{Paragraph("just text")}); len(got) != 0 {
		t.Errorf("expected no sections without headings, got %d", len(got))
	}
}

func TestFindSection(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		name      string
		query     string
		wantStart int
		wantOK    bool
	}{
		{"exact match", "Section A", 2, true},
		{"case insensitive", "section a", 2, true},
		{"substring", "B.1", 7, true},
		{"first match wins on tie", "Section B", 5, true},
		{"not found", "Nonexistent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := FindSection(doc, tt.query)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && s.Start != tt.wantStart {
				t.Errorf("expected start %d, got %d", tt.wantStart, s.Start)
			}
		})
	}
}

func TestExtractSection(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		name    string
		query   string
		wantLen int
		wantOK  bool
	}{
		{"heading plus body", "Section A", 3, true},
		{"case insensitive", "section a", 3, true},
		{"subsection", "B.1", 2, true},
		{"includes nested subsections", "Section B", 4, true},
		{"not found", "Nonexistent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, ok := ExtractSection(doc, tt.query)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if len(nodes) != tt.wantLen {
				t.Errorf("expected %d nodes, got %d", tt.wantLen, len(nodes))
			}
			if nodes[0].Type != NodeHeading {
				t.Errorf("expected first node to be the heading, got %q", nodes[0].Type)
			}
		})
	}
}

func TestReplaceSection(t *testing.T) {
	doc := sampleDoc()
	replacement := []Node{Heading(2, "Section A"), Paragraph("Replaced!")}

	result, err := ReplaceSection(doc, "Section A", replacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 11 nodes - 3 replaced + 2 new
	if len(result) != 10 {
		t.Fatalf("expected 10 nodes, got %d", len(result))
	}
	if got := result[3].PlainText(); got != "Replaced!" {
		t.Errorf("expected replacement body at index 3, got %q", got)
	}

	// Sections outside the replaced range keep heading text and order.
	var headings []string
	for _, s := range FindSections(result) {
		headings = append(headings, s.Heading)
	}
	want := []string{"Title", "Section A", "Section B", "Section B.1", "Section C"}
	for i := range want {
		if headings[i] != want[i] {
			t.Errorf("heading %d: expected %q, got %q", i, want[i], headings[i])
		}
	}

	// Input document is untouched.
	if len(doc) != 11 {
		t.Errorf("input doc mutated: expected 11 nodes, got %d", len(doc))
	}
	if got := doc[3].PlainText(); got != "Content of section A." {
		t.Errorf("input doc mutated: expected original body, got %q", got)
	}
}

func TestReplaceSectionNotFound(t *testing.T) {
	_, err := ReplaceSection(sampleDoc(), "Nonexistent", []Node{Paragraph("x")})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nonexistent") {
		t.Errorf("expected error to name the query, got %q", err.Error())
	}
}

func TestInsertAfter(t *testing.T) {
	doc := sampleDoc()
	inserted := []Node{Heading(2, "Section A.5"), Paragraph("Inserted!")}

	result, err := InsertAfter(doc, "Section A", inserted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != len(doc)+2 {
		t.Fatalf("expected %d nodes, got %d", len(doc)+2, len(result))
	}
	// Section A ends at index 5; the new heading lands there.
	if got := result[5].PlainText(); got != "Section A.5" {
		t.Errorf("expected inserted heading at index 5, got %q", got)
	}
	if got := result[7].PlainText(); got != "Section B" {
		t.Errorf("expected Section B pushed to index 7, got %q", got)
	}
}

func TestInsertAfterSkipsSubsections(t *testing.T) {
	doc := sampleDoc()

	result, err := InsertAfter(doc, "Section B", []Node{Paragraph("After B and B.1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Section B spans [5,9) including B.1, so the insert lands at 9.
	if got := result[9].PlainText(); got != "After B and B.1" {
		t.Errorf("expected insert after subsection at index 9, got %q", got)
	}
	if got := result[10].PlainText(); got != "Section C" {
		t.Errorf("expected Section C pushed to index 10, got %q", got)
	}
}

func TestInsertAfterNotFound(t *testing.T) {
	_, err := InsertAfter(sampleDoc(), "Nonexistent", []Node{Paragraph("x")})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}
