package adf

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Extension is a derived view over a bodiedExtension node: the macro title,
// the extension key and the node's index in the document. Indices are only
// valid until the document is mutated.
type Extension struct {
	Title string `json:"title"`
	Key   string `json:"key"`
	Index int    `json:"index"`
}

// ExtensionKey returns the extensionKey attr of a bodiedExtension node.
func (n Node) ExtensionKey() string {
	return n.AttrString("extensionKey")
}

// ExtensionTitle returns the macro title parameter of a bodiedExtension
// node, following attrs.parameters.macroParams.title.value, or "" when any
// step of that path is absent.
func (n Node) ExtensionTitle() string {
	params, _ := n.Attrs["parameters"].(map[string]any)
	macroParams, _ := params["macroParams"].(map[string]any)
	title, _ := macroParams["title"].(map[string]any)
	s, _ := title["value"].(string)
	return s
}

// FindExtensions lists the bodiedExtension nodes of a document in order.
func FindExtensions(doc Document) []Extension {
	var exts []Extension
	for i, n := range doc {
		if n.Type != NodeBodiedExtension {
			continue
		}
		exts = append(exts, Extension{
			Title: n.ExtensionTitle(),
			Key:   n.ExtensionKey(),
			Index: i,
		})
	}
	return exts
}

// ExtractExtension returns the first bodiedExtension whose title contains
// the query, compared case-insensitively. Keys are not searched.
func ExtractExtension(doc Document, title string) (Node, bool) {
	i, ok := findExtension(doc, title)
	if !ok {
		return Node{}, false
	}
	return doc[i], true
}

// ReplaceExtensionContent swaps the body of the first matching extension and
// returns the new document. Every attribute of the wrapper node, macro
// parameters included, is preserved; only the content sequence changes.
func ReplaceExtensionContent(doc Document, title string, content []Node) (Document, error) {
	i, ok := findExtension(doc, title)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, title)
	}
	out := make(Document, len(doc))
	copy(out, doc)
	node := doc[i]
	node.Content = content
	out[i] = node
	return out, nil
}

func findExtension(doc Document, title string) (int, bool) {
	q := strings.ToLower(title)
	for i, n := range doc {
		if n.Type != NodeBodiedExtension {
			continue
		}
		if strings.Contains(strings.ToLower(n.ExtensionTitle()), q) {
			return i, true
		}
	}
	return 0, false
}

// BodiedExtension creates a macro wrapper node with fresh macro and local
// ids. Common keys on Confluence are panelbox and details.
func BodiedExtension(key, title string, content []Node) Node {
	return Node{
		Type: NodeBodiedExtension,
		Attrs: map[string]any{
			"layout":        "default",
			"extensionType": "com.atlassian.confluence.macro.core",
			"extensionKey":  key,
			"parameters": map[string]any{
				"macroParams": map[string]any{
					"title": map[string]any{"value": title},
				},
				"macroMetadata": map[string]any{
					"macroId":       map[string]any{"value": uuid.NewString()},
					"schemaVersion": map[string]any{"value": "1"},
				},
			},
			"localId": uuid.NewString(),
		},
		Content: content,
	}
}
