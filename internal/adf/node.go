// Package adf models Atlassian Document Format node trees and provides
// section-level and extension-level editing on top of them. Documents decode
// from either the full {"type":"doc",...} object or a bare node array, and
// unknown node types and attributes survive a decode/encode round trip
// untouched.
package adf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NodeType identifies the kind of an ADF node.
type NodeType string

// Node types produced by the builders and recognized by the locators.
// Documents may carry other types; those pass through unmodified.
const (
	NodeDoc             NodeType = "doc"
	NodeParagraph       NodeType = "paragraph"
	NodeHeading         NodeType = "heading"
	NodeText            NodeType = "text"
	NodeBulletList      NodeType = "bulletList"
	NodeOrderedList     NodeType = "orderedList"
	NodeListItem        NodeType = "listItem"
	NodeTable           NodeType = "table"
	NodeTableRow        NodeType = "tableRow"
	NodeTableCell       NodeType = "tableCell"
	NodeTableHeader     NodeType = "tableHeader"
	NodePanel           NodeType = "panel"
	NodeCodeBlock       NodeType = "codeBlock"
	NodeExpand          NodeType = "expand"
	NodeBlockquote      NodeType = "blockquote"
	NodeRule            NodeType = "rule"
	NodeHardBreak       NodeType = "hardBreak"
	NodeStatus          NodeType = "status"
	NodeBodiedExtension NodeType = "bodiedExtension"
)

// MarkType identifies a formatting mark on a text node.
type MarkType string

// Mark types valid on text nodes.
const (
	MarkStrong    MarkType = "strong"
	MarkEm        MarkType = "em"
	MarkStrike    MarkType = "strike"
	MarkCode      MarkType = "code"
	MarkLink      MarkType = "link"
	MarkTextColor MarkType = "textColor"
)

// Mark annotates a text node with formatting.
type Mark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is a single ADF node. Attrs holds type-specific parameters, Content
// the ordered child nodes, and Text the payload of text nodes.
type Node struct {
	Type    NodeType       `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// MarshalJSON keeps the text field on text nodes even when it is empty.
func (n Node) MarshalJSON() ([]byte, error) {
	type node Node
	if n.Type == NodeText {
		return json.Marshal(struct {
			node
			Text string `json:"text"`
		}{node(n), n.Text})
	}
	return json.Marshal(node(n))
}

// HeadingLevel returns the level attr of a heading node. Absent or
// unreadable levels default to 1.
func (n Node) HeadingLevel() int {
	switch v := n.Attrs["level"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 1
}

// AttrString returns a string attr, or "" when absent or not a string.
func (n Node) AttrString(key string) string {
	s, _ := n.Attrs[key].(string)
	return s
}

// PlainText concatenates the text of the node and all its descendants.
func (n Node) PlainText() string {
	if n.Type == NodeText {
		return n.Text
	}
	var b strings.Builder
	for _, child := range n.Content {
		b.WriteString(child.PlainText())
	}
	return b.String()
}

// Document is the ordered sequence of top-level block nodes of a page body.
type Document []Node

// UnmarshalJSON accepts either a bare node array or a full document object,
// in which case the top-level content array is extracted.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, (*[]Node)(d))
	}
	var doc struct {
		Content []Node `json:"content"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*d = doc.Content
	return nil
}

// ParseDocument decodes ADF JSON into a Document. Input may be a full
// {"type":"doc","version":1,"content":[...]} object or a bare node array.
func ParseDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return d, nil
}

// Doc is the document envelope shape stored on disk and shipped to the API.
type Doc struct {
	Type    string   `json:"type"`
	Version int      `json:"version"`
	Content Document `json:"content"`
}

// NewDoc wraps top-level nodes in the standard document envelope. A nil
// content still encodes as an empty array, never null.
func NewDoc(content Document) Doc {
	if content == nil {
		content = Document{}
	}
	return Doc{Type: "doc", Version: 1, Content: content}
}
