package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conflu-dev/conflu/internal/adf"
	"github.com/conflu-dev/conflu/internal/config"
	"github.com/conflu-dev/conflu/internal/markdown"
	"github.com/conflu-dev/conflu/internal/output"
	"github.com/conflu-dev/conflu/internal/render"
	"github.com/conflu-dev/conflu/internal/store"
	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <page-id>",
	Short: "List the heading sections of a cached page",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

var extractCmd = &cobra.Command{
	Use:   "extract <page-id> <heading>",
	Short: "Print the nodes of one section",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtract,
}

var replaceCmd = &cobra.Command{
	Use:   "replace <page-id> <heading>",
	Short: "Replace a section of a cached page",
	Long: `Replaces a section's nodes, heading included, with the contents
of --file. Markdown files are converted to ADF; any other file is
parsed as an ADF document or node array. The heading is matched
case-insensitively by substring.`,
	Args: cobra.ExactArgs(2),
	RunE: runReplace,
}

var insertAfterCmd = &cobra.Command{
	Use:   "insert-after <page-id> <heading>",
	Short: "Insert nodes after a section of a cached page",
	Args:  cobra.ExactArgs(2),
	RunE:  runInsertAfter,
}

var extensionsCmd = &cobra.Command{
	Use:   "extensions <page-id>",
	Short: "List the bodied extensions (macros) of a cached page",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtensions,
}

var extReplaceCmd = &cobra.Command{
	Use:   "ext-replace <page-id> <title>",
	Short: "Replace the body of a bodied extension",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtReplace,
}

func init() {
	extractCmd.Flags().Bool("md", false, "Render the section as markdown instead of JSON")

	for _, cmd := range []*cobra.Command{replaceCmd, insertAfterCmd, extReplaceCmd} {
		cmd.Flags().String("file", "", "Markdown or ADF JSON file with the new content")
		cmd.MarkFlagRequired("file")
	}
}

// loadLocalDocument parses the cached ADF body of a page.
func loadLocalDocument(pageID string) (adf.Document, error) {
	raw, err := store.LoadDocument(pageID, config.GetPagesDir())
	if err != nil {
		return nil, fmt.Errorf("no local ADF for page %s (run: conflu get %s)", pageID, pageID)
	}
	doc, err := adf.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", pageID, err)
	}
	return doc, nil
}

// saveLocalDocument writes a document back to the page cache, wrapped in
// the standard doc envelope.
func saveLocalDocument(pageID string, doc adf.Document) error {
	data, err := json.Marshal(adf.NewDoc(doc))
	if err != nil {
		return err
	}
	return store.SaveDocument(pageID, config.GetPagesDir(), data)
}

// loadContentFile reads replacement nodes from a markdown or ADF JSON file.
func loadContentFile(path string) (adf.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return markdown.ToDocument(string(data)), nil
	default:
		doc, err := adf.ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return doc, nil
	}
}

func runSections(cmd *cobra.Command, args []string) error {
	doc, err := loadLocalDocument(args[0])
	if err != nil {
		return err
	}

	secs := adf.FindSections(doc)
	if output.JSONMode() {
		output.EmitJSON(secs)
		return nil
	}
	for _, s := range secs {
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		fmt.Printf("%s%s [%d:%d]\n", indent, s.Heading, s.Start, s.End)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	doc, err := loadLocalDocument(args[0])
	if err != nil {
		return err
	}

	nodes, ok := adf.ExtractSection(doc, args[1])
	if !ok {
		return fmt.Errorf("%w: %s", adf.ErrSectionNotFound, args[1])
	}
	if md, _ := cmd.Flags().GetBool("md"); md {
		fmt.Print(render.Markdown(nodes))
		return nil
	}
	output.EmitJSON(nodes)
	return nil
}

func runReplace(cmd *cobra.Command, args []string) error {
	pageID, heading := args[0], args[1]
	path, _ := cmd.Flags().GetString("file")

	content, err := loadContentFile(path)
	if err != nil {
		return err
	}
	doc, err := loadLocalDocument(pageID)
	if err != nil {
		return err
	}

	next, err := adf.ReplaceSection(doc, heading, content)
	if err != nil {
		return err
	}
	if err := saveLocalDocument(pageID, next); err != nil {
		return err
	}
	output.Emit("OK", fmt.Sprintf("replaced %q in page %s (%d nodes)", heading, pageID, len(content)))
	return nil
}

func runInsertAfter(cmd *cobra.Command, args []string) error {
	pageID, heading := args[0], args[1]
	path, _ := cmd.Flags().GetString("file")

	content, err := loadContentFile(path)
	if err != nil {
		return err
	}
	doc, err := loadLocalDocument(pageID)
	if err != nil {
		return err
	}

	next, err := adf.InsertAfter(doc, heading, content)
	if err != nil {
		return err
	}
	if err := saveLocalDocument(pageID, next); err != nil {
		return err
	}
	output.Emit("OK", fmt.Sprintf("inserted %d nodes after %q in page %s", len(content), heading, pageID))
	return nil
}

func runExtensions(cmd *cobra.Command, args []string) error {
	doc, err := loadLocalDocument(args[0])
	if err != nil {
		return err
	}

	exts := adf.FindExtensions(doc)
	if output.JSONMode() {
		output.EmitJSON(exts)
		return nil
	}
	for _, e := range exts {
		fmt.Printf("%d %s %q\n", e.Index, e.Key, e.Title)
	}
	return nil
}

func runExtReplace(cmd *cobra.Command, args []string) error {
	pageID, title := args[0], args[1]
	path, _ := cmd.Flags().GetString("file")

	content, err := loadContentFile(path)
	if err != nil {
		return err
	}
	doc, err := loadLocalDocument(pageID)
	if err != nil {
		return err
	}

	next, err := adf.ReplaceExtensionContent(doc, title, content)
	if err != nil {
		return err
	}
	if err := saveLocalDocument(pageID, next); err != nil {
		return err
	}
	output.Emit("OK", fmt.Sprintf("replaced extension %q in page %s (%d nodes)", title, pageID, len(content)))
	return nil
}
