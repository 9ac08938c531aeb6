package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/conflu-dev/conflu/internal/config"
	"github.com/conflu-dev/conflu/internal/output"
	"github.com/conflu-dev/conflu/internal/store"
	"github.com/conflu-dev/conflu/internal/syncer"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var getCmd = &cobra.Command{
	Use:   "get <page-id>",
	Short: "Download a page (ADF + metadata)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var putCmd = &cobra.Command{
	Use:   "put <page-id>",
	Short: "Upload local ADF to Confluence",
	Args:  cobra.ExactArgs(1),
	RunE:  runPut,
}

var diffCmd = &cobra.Command{
	Use:   "diff <page-id>",
	Short: "Compare local vs remote ADF",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var syncCmd = &cobra.Command{
	Use:   "sync <space-key>",
	Short: "Bulk-download all pages in a space",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the local page index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the page index from the API",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	putCmd.Flags().Bool("force", false, "Skip the version conflict check")
	putCmd.Flags().String("message", "", "Version message for the update")

	syncCmd.Flags().Int("workers", 10, "Parallel workers")
	syncCmd.Flags().Bool("force", false, "Re-download all pages, ignore cache")

	searchCmd.Flags().String("index", "page-index.json", "Index file path")

	indexCmd.Flags().StringArray("space", nil, "Space key(s) to index")
	indexCmd.Flags().String("output", "page-index.json", "Output file")

	viper.BindPFlag("workers", syncCmd.Flags().Lookup("workers"))
	viper.BindPFlag("index_file", searchCmd.Flags().Lookup("index"))
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	page, err := client.GetPage(ctx, args[0])
	if err != nil {
		return err
	}
	space, err := client.GetSpaceByID(ctx, page.SpaceID)
	if err != nil {
		return err
	}
	spaceKey := space.Key
	if spaceKey == "" {
		spaceKey = page.SpaceID
	}

	adfPath, _, err := store.SavePage(page, spaceKey, config.GetPagesDir())
	if err != nil {
		return err
	}
	output.Emit("OK", fmt.Sprintf("%s (v%d) -> %s", page.Title, page.Version.Number, adfPath))
	return nil
}

func runPut(cmd *cobra.Command, args []string) error {
	pageID := args[0]
	pagesDir := config.GetPagesDir()

	meta, err := store.LoadMeta(pageID, pagesDir)
	if err != nil {
		return fmt.Errorf("no local metadata for page %s", pageID)
	}
	body, err := store.LoadDocument(pageID, pagesDir)
	if err != nil {
		return fmt.Errorf("no local ADF for page %s", pageID)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return fmt.Errorf("page %s body: %w", pageID, err)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	remote, err := client.GetPage(ctx, pageID)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	if !force && remote.Version.Number != meta.Version {
		return fmt.Errorf("version conflict: local v%d, remote v%d (use --force to overwrite)",
			meta.Version, remote.Version.Number)
	}

	newVersion := remote.Version.Number + 1
	message, _ := cmd.Flags().GetString("message")
	result, err := client.UpdatePage(ctx, pageID, meta.Title, compact.Bytes(), newVersion, message)
	if err != nil {
		return err
	}

	meta.Version = newVersion
	meta.UpdatedAt = result.Version.CreatedAt
	if err := store.SaveMeta(meta, pagesDir); err != nil {
		return err
	}
	output.Emit("OK", fmt.Sprintf("%s updated to v%d", meta.Title, newVersion))
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	pageID := args[0]
	pagesDir := config.GetPagesDir()

	local, err := store.LoadDocument(pageID, pagesDir)
	if err != nil {
		return fmt.Errorf("no local ADF for page %s", pageID)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	remote, err := client.GetPage(cmd.Context(), pageID)
	if err != nil {
		return err
	}
	remoteBody := remote.Body
	if remoteBody == nil {
		remoteBody = json.RawMessage("{}")
	}

	localText, err := canonicalJSON(local)
	if err != nil {
		return fmt.Errorf("local page %s: %w", pageID, err)
	}
	remoteText, err := canonicalJSON(remoteBody)
	if err != nil {
		return fmt.Errorf("remote page %s: %w", pageID, err)
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(localText),
		B:        difflib.SplitLines(remoteText),
		FromFile: "local/" + pageID + ".json",
		ToFile:   "remote/" + pageID,
		Context:  3,
	})
	if err != nil {
		return err
	}
	if text != "" {
		fmt.Print(text)
		return nil
	}

	title := pageID
	if meta, err := store.LoadMeta(pageID, pagesDir); err == nil {
		title = meta.Title
	}
	output.Emit("OK", "No differences for "+title)
	return nil
}

// canonicalJSON reindents raw JSON with sorted object keys so both diff
// sides share one formatting regardless of how they were produced.
func canonicalJSON(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func runSync(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	stats, err := syncer.Run(cmd.Context(), client, args[0], syncer.Options{
		PagesDir: config.GetPagesDir(),
		Workers:  config.GetWorkers(),
		Force:    force,
	})
	if err != nil {
		return err
	}

	if stats.Fetched == 0 {
		output.Emit("DONE", fmt.Sprintf("%s: %d pages, all up-to-date", stats.SpaceKey, stats.Total))
		return nil
	}
	output.Emit("DONE", fmt.Sprintf("%s: %d fetched, %d skipped, %d errors",
		stats.SpaceKey, stats.Fetched, stats.Skipped, stats.Errors))
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	indexPath := config.GetIndexFile()
	index, err := store.ReadIndex(indexPath)
	if err != nil {
		return fmt.Errorf("index not found: %s (run: conflu index)", indexPath)
	}

	results := store.Search(index, args[0])
	if output.JSONMode() {
		output.EmitJSON(results)
		return nil
	}
	for _, p := range results {
		fmt.Printf("%s [%s] %s\n", p.ID, p.SpaceKey, p.Title)
	}
	if len(results) == 0 {
		output.Progress("No results.")
	}
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	spaces, _ := cmd.Flags().GetStringArray("space")
	if len(spaces) == 0 {
		spaces = config.GetSpaces()
	}
	outPath, _ := cmd.Flags().GetString("output")

	index := store.Index{}
	total := 0
	for _, key := range spaces {
		space, err := client.GetSpace(ctx, key)
		if err != nil {
			return err
		}
		output.Progress("Indexing %s…", space.Key)

		pages, err := client.ListPages(ctx, space.ID)
		if err != nil {
			return err
		}
		entries := make([]store.IndexEntry, 0, len(pages))
		for _, p := range pages {
			entries = append(entries, store.IndexEntry{
				ID:        p.ID,
				Title:     p.Title,
				ParentID:  p.ParentID,
				Version:   p.Version.Number,
				UpdatedAt: p.Version.CreatedAt,
			})
		}
		index[space.Key] = entries
		output.Progress("  %s: %d pages", space.Key, len(pages))
		total += len(pages)
	}

	if err := store.WriteIndex(index, outPath); err != nil {
		return err
	}
	output.Emit("DONE", fmt.Sprintf("%d pages indexed -> %s", total, outPath))
	return nil
}
