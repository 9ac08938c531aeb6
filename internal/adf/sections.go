package adf

import (
	"fmt"
	"strings"
)

// Section is a derived view over a Document: one heading node plus every
// node up to (not including) the next heading of equal or higher level.
// Start is the heading's index; End is exclusive. Sections are recomputed
// on every query and do not survive document mutation.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// FindSections lists the sections of a document in order. A section owns
// its nested subsections: a level-2 heading's range runs past any level-3
// headings below it, up to the next heading of level 2 or 1.
func FindSections(doc Document) []Section {
	var sections []Section
	for i, n := range doc {
		if n.Type != NodeHeading {
			continue
		}
		sections = append(sections, Section{
			Heading: strings.TrimSpace(n.PlainText()),
			Level:   n.HeadingLevel(),
			Start:   i,
		})
	}

	for i := range sections {
		sections[i].End = len(doc)
		for j := i + 1; j < len(sections); j++ {
			if sections[j].Level <= sections[i].Level {
				sections[i].End = sections[j].Start
				break
			}
		}
	}
	return sections
}

// FindSection returns the first section whose heading contains the query,
// compared case-insensitively.
func FindSection(doc Document, heading string) (Section, bool) {
	q := strings.ToLower(heading)
	for _, s := range FindSections(doc) {
		if strings.Contains(strings.ToLower(s.Heading), q) {
			return s, true
		}
	}
	return Section{}, false
}

// ExtractSection returns the nodes of a section, heading included. The
// result shares nodes with the input document. The second return is false
// when no heading matches.
func ExtractSection(doc Document, heading string) (Document, bool) {
	s, ok := FindSection(doc, heading)
	if !ok {
		return nil, false
	}
	return doc[s.Start:s.End], true
}

// ReplaceSection splices replacement over a section's node range and returns
// the new document. The input document is left untouched; nodes outside the
// section are shared between old and new.
func ReplaceSection(doc Document, heading string, replacement []Node) (Document, error) {
	s, ok := FindSection(doc, heading)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, heading)
	}
	out := make(Document, 0, len(doc)-(s.End-s.Start)+len(replacement))
	out = append(out, doc[:s.Start]...)
	out = append(out, replacement...)
	out = append(out, doc[s.End:]...)
	return out, nil
}

// InsertAfter inserts nodes immediately after a section's full span, past
// any nested subsections, and returns the new document.
func InsertAfter(doc Document, heading string, nodes []Node) (Document, error) {
	s, ok := FindSection(doc, heading)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, heading)
	}
	out := make(Document, 0, len(doc)+len(nodes))
	out = append(out, doc[:s.End]...)
	out = append(out, nodes...)
	out = append(out, doc[s.End:]...)
	return out, nil
}
