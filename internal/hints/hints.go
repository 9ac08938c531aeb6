// Package hints embeds structured guidance for AI agents working with
// Confluence ADF through this tool: document structure, third-party
// macro handling, and safe section-level editing patterns.
package hints

import (
	"fmt"
	"strings"
)

// Macro describes a known third-party macro and how to treat it.
type Macro struct {
	Key         string   `json:"key"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
	Notes       string   `json:"notes"`
}

// Topic is one guidance entry. Only Name and Summary are always set.
type Topic struct {
	Name      string         `json:"name"`
	Summary   string         `json:"summary"`
	Detail    string         `json:"detail,omitempty"`
	Rules     []string       `json:"rules,omitempty"`
	Builders  string         `json:"builders,omitempty"`
	Macros    []Macro        `json:"knownMacros,omitempty"`
	Structure map[string]any `json:"structure,omitempty"`
}

var topics = []Topic{
	{
		Name:    "macros",
		Summary: "Third-party macros appear as bodiedExtension nodes in ADF.",
		Detail: "bodiedExtension nodes wrap third-party Confluence macros (addons). " +
			"The extensionKey identifies the macro type. The content array holds " +
			"standard ADF nodes. When editing, preserve the full wrapper (attrs, " +
			"parameters, localId) and only modify the content array inside. " +
			"The extensions and ext-replace commands do this safely.",
		Macros: []Macro{
			{
				Key:         "panelbox",
				Description: "Styled panel box (Advanced Panelboxes by bitvoodoo/communardo).",
				Params:      []string{"id (style ID)", "title"},
				Notes: "The id param controls visual style, not identity. " +
					"Generate fresh UUIDs for macroId and localId when creating new ones.",
			},
			{
				Key:         "details",
				Description: "Metadata/details section, usually contains tables.",
				Params:      []string{"_parentId (optional)"},
				Notes:       "Typically has no title param. Preserve as-is when editing.",
			},
		},
		Structure: map[string]any{
			"type": "bodiedExtension",
			"attrs": map[string]any{
				"layout":        "default",
				"extensionType": "com.atlassian.confluence.macro.core",
				"extensionKey":  "<macro-key e.g. panelbox, details>",
				"parameters": map[string]any{
					"macroParams": map[string]any{
						"<param-name>": map[string]any{"value": "<param-value>"},
					},
					"macroMetadata": map[string]any{
						"macroId":       map[string]any{"value": "<uuid>"},
						"schemaVersion": map[string]any{"value": "1"},
					},
				},
				"localId": "<uuid>",
			},
			"content": []any{"<standard ADF nodes>"},
		},
	},
	{
		Name:    "sections",
		Summary: "Sections are defined by heading nodes and used as the unit of editing.",
		Detail: "The sections command lists all sections with their heading text, level, " +
			"and node index range. Sections span from their heading to the next heading " +
			"of equal or higher level. Use extract, replace, and insert-after for safe, " +
			"targeted edits without touching the rest of the page.",
	},
	{
		Name:    "editing",
		Summary: "Best practices for editing Confluence pages via ADF.",
		Rules: []string{
			"Always read the page first (conflu get) to get the current version.",
			"Use section-level or extension-level operations, never rewrite the whole page.",
			"Preserve all bodiedExtension wrappers, only modify their content arrays.",
			"Do not rename or restyle existing panelboxes, tables, or macros unless asked.",
			"The put command checks version numbers to prevent conflicts.",
			"Use the view command to preview changes as markdown before uploading.",
		},
	},
	{
		Name:    "adf-basics",
		Summary: "ADF (Atlassian Document Format) is the JSON tree structure used by Confluence.",
		Detail: "An ADF document has type \"doc\" with a content array of block nodes. " +
			"Block nodes include: paragraph, heading, bulletList, orderedList, table, " +
			"panel, codeBlock, blockquote, expand, rule, bodiedExtension. " +
			"Inline nodes (inside paragraphs/headings) include: text, hardBreak, " +
			"inlineCard, status. Text nodes can have marks: strong, em, strike, code, " +
			"link, textColor.",
		Builders: "Builder functions in the adf package: Heading, Paragraph, Text, " +
			"BoldText, ItalicText, LinkText, BulletList, OrderedList, Table, Panel, " +
			"CodeBlock, Expand, Blockquote, Rule, StatusBadge, HardBreak. " +
			"The convert command turns markdown into ADF for simple content.",
	},
}

// Topics returns all guidance topics in display order.
func Topics() []Topic {
	return topics
}

// Lookup returns the topic with the given name.
func Lookup(name string) (Topic, bool) {
	for _, t := range topics {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Format renders topics as readable text. An empty or unknown name
// renders every topic.
func Format(name string) string {
	selected := topics
	if t, ok := Lookup(name); ok {
		selected = []Topic{t}
	}

	var lines []string
	for _, t := range selected {
		lines = append(lines, "## "+t.Name)
		lines = append(lines, "  "+t.Summary)
		if t.Detail != "" {
			lines = append(lines, "  "+t.Detail)
		}
		for _, rule := range t.Rules {
			lines = append(lines, "  - "+rule)
		}
		if t.Builders != "" {
			lines = append(lines, "  "+t.Builders)
		}
		for _, m := range t.Macros {
			lines = append(lines, fmt.Sprintf("  [%s] %s", m.Key, m.Description))
			lines = append(lines, "    params: "+strings.Join(m.Params, ", "))
			lines = append(lines, "    "+m.Notes)
		}
		if t.Structure != nil {
			lines = append(lines, "  Structure: (use --json for machine-readable output)")
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
