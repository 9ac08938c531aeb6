package adf

import "fmt"

// Builders construct minimal well-formed nodes. Content arguments are
// deliberately loose: strings become plain text nodes, []Node sequences are
// spliced in, and list items accept pre-built listItem nodes, so callers can
// mix literals with marked-up runs without ceremony.

// Text creates a plain text node.
func Text(s string) Node {
	return Node{Type: NodeText, Text: s}
}

// TextStyle selects the marks StyledText applies.
type TextStyle struct {
	Bold   bool
	Italic bool
	Strike bool
	Code   bool
	Link   string // href target, empty for none
	Color  string // text color, empty for default
}

// StyledText creates a text node with marks in canonical order: strong, em,
// strike, code, link, textColor. Unstyled text carries no marks field.
func StyledText(s string, style TextStyle) Node {
	var marks []Mark
	if style.Bold {
		marks = append(marks, Mark{Type: MarkStrong})
	}
	if style.Italic {
		marks = append(marks, Mark{Type: MarkEm})
	}
	if style.Strike {
		marks = append(marks, Mark{Type: MarkStrike})
	}
	if style.Code {
		marks = append(marks, Mark{Type: MarkCode})
	}
	if style.Link != "" {
		marks = append(marks, Mark{Type: MarkLink, Attrs: map[string]any{"href": style.Link}})
	}
	if style.Color != "" {
		marks = append(marks, Mark{Type: MarkTextColor, Attrs: map[string]any{"color": style.Color}})
	}
	return Node{Type: NodeText, Text: s, Marks: marks}
}

// BoldText creates a strong-marked text node.
func BoldText(s string) Node {
	return StyledText(s, TextStyle{Bold: true})
}

// ItalicText creates an em-marked text node.
func ItalicText(s string) Node {
	return StyledText(s, TextStyle{Italic: true})
}

// LinkText creates a link text node pointing at href.
func LinkText(label, href string) Node {
	return StyledText(label, TextStyle{Link: href})
}

// Paragraph creates a paragraph from strings, inline nodes or []Node runs.
func Paragraph(parts ...any) Node {
	return Node{Type: NodeParagraph, Content: inlineContent(parts)}
}

// Heading creates a heading node at the given level (1-6).
func Heading(level int, parts ...any) Node {
	return Node{
		Type:    NodeHeading,
		Attrs:   map[string]any{"level": level},
		Content: inlineContent(parts),
	}
}

// StatusBadge creates a status lozenge. Colors: neutral, purple, blue,
// green, yellow, red. An empty color means neutral.
func StatusBadge(label, color string) Node {
	if color == "" {
		color = "neutral"
	}
	return Node{Type: NodeStatus, Attrs: map[string]any{
		"text":    label,
		"color":   color,
		"localId": "",
		"style":   "",
	}}
}

// Rule creates a horizontal rule node.
func Rule() Node {
	return Node{Type: NodeRule}
}

// HardBreak creates a forced line break node.
func HardBreak() Node {
	return Node{Type: NodeHardBreak}
}

// BulletList creates a bullet list. Items may be strings, inline nodes,
// []Node inline runs, or pre-built listItem nodes.
func BulletList(items ...any) Node {
	return Node{Type: NodeBulletList, Content: listItems(items)}
}

// OrderedList creates a numbered list from the same item kinds as
// BulletList. The order attr is always 1.
func OrderedList(items ...any) Node {
	return Node{
		Type:    NodeOrderedList,
		Attrs:   map[string]any{"order": 1},
		Content: listItems(items),
	}
}

// ListItem wraps inline parts in a paragraph inside a listItem node.
func ListItem(parts ...any) Node {
	return Node{Type: NodeListItem, Content: []Node{Paragraph(parts...)}}
}

// Table creates a table with one header row followed by the given rows.
// Cells may be strings, inline nodes or []Node inline runs.
func Table(headers []any, rows ...[]any) Node {
	content := make([]Node, 0, len(rows)+1)
	content = append(content, tableRow(headers, NodeTableHeader))
	for _, row := range rows {
		content = append(content, tableRow(row, NodeTableCell))
	}
	return Node{
		Type: NodeTable,
		Attrs: map[string]any{
			"isNumberColumnEnabled": false,
			"layout":                "default",
			"localId":               "",
		},
		Content: content,
	}
}

// Panel creates a panel node. Types: info, note, warning, success, error.
func Panel(panelType string, nodes ...Node) Node {
	return Node{Type: NodePanel, Attrs: map[string]any{"panelType": panelType}, Content: nodes}
}

// CodeBlock creates a fenced code block with an optional language tag.
func CodeBlock(code, language string) Node {
	return Node{
		Type:    NodeCodeBlock,
		Attrs:   map[string]any{"language": language},
		Content: []Node{Text(code)},
	}
}

// Expand creates a collapsible block with the given title.
func Expand(title string, nodes ...Node) Node {
	return Node{Type: NodeExpand, Attrs: map[string]any{"title": title}, Content: nodes}
}

// Blockquote wraps block nodes in a blockquote.
func Blockquote(nodes ...Node) Node {
	return Node{Type: NodeBlockquote, Content: nodes}
}

func tableRow(cells []any, cellType NodeType) Node {
	row := make([]Node, 0, len(cells))
	for _, c := range cells {
		cell := Node{Type: cellType, Attrs: map[string]any{}, Content: []Node{toParagraph(c)}}
		row = append(row, cell)
	}
	return Node{Type: NodeTableRow, Content: row}
}

// toParagraph wraps a single cell or list value in a paragraph.
func toParagraph(v any) Node {
	if run, ok := v.([]Node); ok {
		return Node{Type: NodeParagraph, Content: run}
	}
	return Paragraph(v)
}

// inlineContent coerces builder arguments to inline nodes.
func inlineContent(parts []any) []Node {
	content := make([]Node, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case Node:
			content = append(content, v)
		case []Node:
			content = append(content, v...)
		case string:
			content = append(content, Text(v))
		default:
			content = append(content, Text(fmt.Sprint(v)))
		}
	}
	return content
}

// listItems coerces list arguments to listItem nodes.
func listItems(items []any) []Node {
	out := make([]Node, 0, len(items))
	for _, item := range items {
		if n, ok := item.(Node); ok && n.Type == NodeListItem {
			out = append(out, n)
			continue
		}
		out = append(out, Node{Type: NodeListItem, Content: []Node{toParagraph(item)}})
	}
	return out
}
