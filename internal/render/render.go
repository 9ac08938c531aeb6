// Package render converts ADF node trees to readable markdown text. The adf
// and markdown packages never import it; callers inject or call it at the
// edges, so the editing core stays independent of how previews look.
package render

import (
	"fmt"
	"strings"

	"github.com/conflu-dev/conflu/internal/adf"
)

// Markdown renders a document to markdown-flavored text. Output favors
// readability over round-tripping: panels and expands become labelled
// blocks, status lozenges render as [LABEL], and bodied extensions render
// as a "key: title" line followed by their body.
func Markdown(doc adf.Document) string {
	out := renderBlocks(doc)
	if out == "" {
		return ""
	}
	return out + "\n"
}

func renderBlocks(nodes []adf.Node) string {
	var blocks []string
	for _, n := range nodes {
		if block := renderBlock(n); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(n adf.Node) string {
	switch n.Type {
	case adf.NodeHeading:
		return strings.Repeat("#", n.HeadingLevel()) + " " + renderInline(n.Content)
	case adf.NodeParagraph:
		return renderInline(n.Content)
	case adf.NodeBulletList:
		return renderList(n, false)
	case adf.NodeOrderedList:
		return renderList(n, true)
	case adf.NodeCodeBlock:
		return "```" + n.AttrString("language") + "\n" + n.PlainText() + "\n```"
	case adf.NodeBlockquote:
		return prefixLines(renderBlocks(n.Content), "> ")
	case adf.NodeRule:
		return "---"
	case adf.NodeTable:
		return renderTable(n)
	case adf.NodePanel:
		label := "**" + n.AttrString("panelType") + ":**"
		return prefixLines(label+"\n"+renderBlocks(n.Content), "> ")
	case adf.NodeExpand:
		return "**" + n.AttrString("title") + "**\n\n" + renderBlocks(n.Content)
	case adf.NodeBodiedExtension:
		head := n.ExtensionKey() + ": " + n.ExtensionTitle()
		if body := renderBlocks(n.Content); body != "" {
			return head + "\n\n" + body
		}
		return head
	default:
		// Unknown block kinds degrade to their text content.
		return n.PlainText()
	}
}

func renderInline(nodes []adf.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Type {
		case adf.NodeText:
			b.WriteString(renderText(n))
		case adf.NodeHardBreak:
			b.WriteString("\n")
		case adf.NodeStatus:
			b.WriteString("[" + n.AttrString("text") + "]")
		default:
			b.WriteString(n.PlainText())
		}
	}
	return b.String()
}

// renderText wraps the text in markdown operators, innermost mark first.
// textColor has no markdown form and renders plain.
func renderText(n adf.Node) string {
	s := n.Text
	for _, m := range n.Marks {
		switch m.Type {
		case adf.MarkStrong:
			s = "**" + s + "**"
		case adf.MarkEm:
			s = "*" + s + "*"
		case adf.MarkStrike:
			s = "~~" + s + "~~"
		case adf.MarkCode:
			s = "`" + s + "`"
		case adf.MarkLink:
			href, _ := m.Attrs["href"].(string)
			s = "[" + s + "](" + href + ")"
		}
	}
	return s
}

func renderList(n adf.Node, ordered bool) string {
	var b strings.Builder
	for i, item := range n.Content {
		if i > 0 {
			b.WriteString("\n")
		}
		if ordered {
			b.WriteString(fmt.Sprintf("%d. ", i+1))
		} else {
			b.WriteString("- ")
		}
		b.WriteString(listItemText(item))
	}
	return b.String()
}

// listItemText flattens a listItem's children to one line.
func listItemText(item adf.Node) string {
	var parts []string
	for _, child := range item.Content {
		if child.Type == adf.NodeParagraph {
			parts = append(parts, renderInline(child.Content))
		} else if block := renderBlock(child); block != "" {
			parts = append(parts, strings.ReplaceAll(block, "\n", " "))
		}
	}
	return strings.Join(parts, " ")
}

func renderTable(n adf.Node) string {
	var b strings.Builder
	for i, row := range n.Content {
		var cells []string
		for _, cell := range row.Content {
			cells = append(cells, cellText(cell))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |")
		if i == 0 {
			b.WriteString("\n|" + strings.Repeat(" --- |", len(cells)))
		}
		if i < len(n.Content)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// cellText flattens a table cell's blocks to one line.
func cellText(cell adf.Node) string {
	var parts []string
	for _, child := range cell.Content {
		if child.Type == adf.NodeParagraph {
			parts = append(parts, renderInline(child.Content))
		} else if block := renderBlock(child); block != "" {
			parts = append(parts, strings.ReplaceAll(block, "\n", " "))
		}
	}
	return strings.Join(parts, " ")
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(prefix+line, " ")
	}
	return strings.Join(lines, "\n")
}
