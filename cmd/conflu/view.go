package main

import (
	"fmt"
	"io"
	"os"

	"github.com/conflu-dev/conflu/internal/adf"
	"github.com/conflu-dev/conflu/internal/browse"
	"github.com/conflu-dev/conflu/internal/config"
	"github.com/conflu-dev/conflu/internal/hints"
	"github.com/conflu-dev/conflu/internal/markdown"
	"github.com/conflu-dev/conflu/internal/output"
	"github.com/conflu-dev/conflu/internal/render"
	"github.com/conflu-dev/conflu/internal/store"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <page-id>",
	Short: "Render a cached page as markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var convertCmd = &cobra.Command{
	Use:   "convert <file.md>",
	Short: "Convert markdown to an ADF document",
	Long: `Converts a markdown file to an ADF document envelope on stdout.
Pass - to read markdown from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Interactively browse the local page index",
	Long: `Opens a full-screen fuzzy browser over the local page index and
prints the selected page ID to stdout, so it composes with other
commands:

  conflu view $(conflu browse)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

var hintsCmd = &cobra.Command{
	Use:   "hints [topic]",
	Short: "Guidance for editing Confluence pages with this tool",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHints,
}

func runView(cmd *cobra.Command, args []string) error {
	doc, err := loadLocalDocument(args[0])
	if err != nil {
		return err
	}
	fmt.Print(render.Markdown(doc))
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}
	output.EmitJSON(adf.NewDoc(markdown.ToDocument(string(data))))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	indexPath := config.GetIndexFile()
	index, err := store.ReadIndex(indexPath)
	if err != nil {
		return fmt.Errorf("index not found: %s (run: conflu index)", indexPath)
	}
	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	return browse.Run(index, config.GetPagesDir(), query)
}

func runHints(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if output.JSONMode() {
		if topic, ok := hints.Lookup(name); ok {
			output.EmitJSON(topic)
		} else {
			output.EmitJSON(hints.Topics())
		}
		return nil
	}
	fmt.Print(hints.Format(name))
	return nil
}
