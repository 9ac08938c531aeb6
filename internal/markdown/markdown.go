// Package markdown converts a constrained markdown dialect into ADF nodes.
package markdown

import (
	"regexp"
	"strings"

	"github.com/conflu-dev/conflu/internal/adf"
)

var (
	ruleRegex    = regexp.MustCompile(`^---+\s*$`)
	headingRegex = regexp.MustCompile(`^(#{1,6})\s+(.*)`)
	bulletRegex  = regexp.MustCompile(`^[-*]\s`)
	bulletStrip  = regexp.MustCompile(`^[-*]\s+`)
	orderedRegex = regexp.MustCompile(`^\d+\.\s`)
	orderedStrip = regexp.MustCompile(`^\d+\.\s+`)
)

// ToDocument converts markdown to a sequence of top-level ADF nodes.
//
// Supported: headings, paragraphs, bullet and ordered lists, bold, italic,
// bold+italic, inline code, links, horizontal rules, fenced code blocks and
// blockquotes. Tables are not converted; use the adf.Table builder. The
// parser is permissive and never fails: anything unrecognized becomes a
// paragraph.
func ToDocument(src string) adf.Document {
	lines := strings.Split(src, "\n")
	var nodes adf.Document
	i := 0

	for i < len(lines) {
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			i++
			continue
		}

		// Horizontal rule
		if ruleRegex.MatchString(line) {
			nodes = append(nodes, adf.Rule())
			i++
			continue
		}

		// Heading
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			inlines := parseInline(strings.TrimSpace(m[2]))
			nodes = append(nodes, adf.Heading(len(m[1]), inlines))
			i++
			continue
		}

		// Fenced code block - verbatim until the closing fence or EOF
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			lang := strings.TrimSpace(strings.TrimSpace(line)[3:])
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
				code = append(code, lines[i])
				i++
			}
			i++ // closing fence
			nodes = append(nodes, adf.CodeBlock(strings.Join(code, "\n"), lang))
			continue
		}

		// Blockquote - strip the prefix and re-parse the body
		if strings.HasPrefix(line, "> ") {
			var quoted []string
			for i < len(lines) && strings.HasPrefix(lines[i], "> ") {
				quoted = append(quoted, lines[i][2:])
				i++
			}
			nodes = append(nodes, adf.Blockquote(ToDocument(strings.Join(quoted, "\n"))...))
			continue
		}

		// Bullet list
		if bulletRegex.MatchString(line) {
			var items []any
			for i < len(lines) && bulletRegex.MatchString(lines[i]) {
				items = append(items, parseInline(bulletStrip.ReplaceAllString(lines[i], "")))
				i++
			}
			nodes = append(nodes, adf.BulletList(items...))
			continue
		}

		// Ordered list - the order attr is always 1 regardless of markers
		if orderedRegex.MatchString(line) {
			var items []any
			for i < len(lines) && orderedRegex.MatchString(lines[i]) {
				items = append(items, parseInline(orderedStrip.ReplaceAllString(lines[i], "")))
				i++
			}
			nodes = append(nodes, adf.OrderedList(items...))
			continue
		}

		// Paragraph - consecutive plain lines joined with single spaces
		var para []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" && !isBlockStart(lines[i]) {
			para = append(para, lines[i])
			i++
		}
		if len(para) > 0 {
			nodes = append(nodes, adf.Paragraph(parseInline(strings.Join(para, " "))))
		}
	}

	return nodes
}

// isBlockStart reports whether a line opens a non-paragraph block construct.
func isBlockStart(line string) bool {
	return headingRegex.MatchString(line) ||
		bulletRegex.MatchString(line) ||
		orderedRegex.MatchString(line) ||
		ruleRegex.MatchString(line) ||
		strings.HasPrefix(strings.TrimSpace(line), "```") ||
		strings.HasPrefix(line, "> ")
}
