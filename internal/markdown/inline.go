package markdown

import (
	"regexp"

	"github.com/conflu-dev/conflu/internal/adf"
)

// inlineRegex matches inline formatting spans. Alternation order sets the
// priority: bold+italic before bold before italic, then code, then links.
var inlineRegex = regexp.MustCompile(
	`\*\*\*(.+?)\*\*\*` + // ***bold italic***
		`|\*\*(.+?)\*\*` + // **bold**
		`|\*(.+?)\*` + // *italic*
		"|`(.+?)`" + // `code`
		`|\[([^\]]+)\]\(([^)]+)\)`, // [label](url)
)

// parseInline tokenizes a line of text into inline nodes: marked text for
// each formatting span, plain text for the runs between. Empty input yields
// a single empty text node so inline content is never an empty sequence.
func parseInline(s string) []adf.Node {
	var nodes []adf.Node
	last := 0

	for _, m := range inlineRegex.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			nodes = append(nodes, adf.Text(s[last:m[0]]))
		}
		nodes = append(nodes, spanNode(s, m))
		last = m[1]
	}

	if last < len(s) {
		nodes = append(nodes, adf.Text(s[last:]))
	}
	if len(nodes) == 0 {
		nodes = append(nodes, adf.Text(s))
	}
	return nodes
}

// spanNode builds the inline node for one match, keyed by which alternation
// group captured.
func spanNode(s string, m []int) adf.Node {
	group := func(i int) (string, bool) {
		if m[2*i] < 0 {
			return "", false
		}
		return s[m[2*i]:m[2*i+1]], true
	}

	if t, ok := group(1); ok {
		return adf.StyledText(t, adf.TextStyle{Bold: true, Italic: true})
	}
	if t, ok := group(2); ok {
		return adf.BoldText(t)
	}
	if t, ok := group(3); ok {
		return adf.ItalicText(t)
	}
	if t, ok := group(4); ok {
		return adf.StyledText(t, adf.TextStyle{Code: true})
	}
	label, _ := group(5)
	href, _ := group(6)
	return adf.LinkText(label, href)
}
