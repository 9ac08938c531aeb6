// Package syncer bulk-downloads whole spaces into the local store with a
// bounded worker pool. Pages whose stored version is current are skipped
// unless a forced re-download is requested.
package syncer

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/conflu-dev/conflu/internal/confluence"
	"github.com/conflu-dev/conflu/internal/output"
	"github.com/conflu-dev/conflu/internal/store"
)

// Options control a space sync.
type Options struct {
	PagesDir string
	Workers  int
	Force    bool
}

// Stats summarizes a completed sync. Fetched counts attempted downloads,
// including the ones that ended in Errors.
type Stats struct {
	SpaceKey string
	Total    int
	Fetched  int
	Skipped  int
	Errors   int
}

// Run mirrors every page of a space into the local store, printing one
// GET or ERR line per page as it completes.
func Run(ctx context.Context, client *confluence.Client, spaceKey string, opts Options) (Stats, error) {
	var stats Stats

	space, err := client.GetSpace(ctx, spaceKey)
	if err != nil {
		return stats, err
	}
	stats.SpaceKey = space.Key
	if stats.SpaceKey == "" {
		stats.SpaceKey = spaceKey
	}

	output.Progress("Listing pages in %s…", stats.SpaceKey)
	pages, err := client.ListPages(ctx, space.ID)
	if err != nil {
		return stats, err
	}
	output.Progress("Found %d pages", len(pages))
	stats.Total = len(pages)

	var toFetch []confluence.PageSummary
	for _, page := range pages {
		if !opts.Force {
			meta, err := store.LoadMeta(page.ID, opts.PagesDir)
			if err == nil && meta.Version >= page.Version.Number {
				stats.Skipped++
				continue
			}
		}
		toFetch = append(toFetch, page)
	}
	if stats.Skipped > 0 {
		output.Progress("SKIP %d pages already up-to-date", stats.Skipped)
	}
	stats.Fetched = len(toFetch)
	if len(toFetch) == 0 {
		return stats, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 10
	}
	output.Progress("Fetching %d pages (%d workers)…", len(toFetch), workers)

	var errCount atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, page := range toFetch {
		g.Go(func() error {
			full, err := client.GetPage(ctx, page.ID)
			if err == nil {
				_, _, err = store.SavePage(full, stats.SpaceKey, opts.PagesDir)
			}
			if err != nil {
				errCount.Add(1)
				output.Emit("ERR", fmt.Sprintf("%s %s: %v", page.ID, page.Title, err))
				return nil
			}
			output.Emit("GET", fmt.Sprintf("%s %s (v%d)", full.ID, full.Title, full.Version.Number))
			return nil
		})
	}
	_ = g.Wait()

	stats.Errors = int(errCount.Load())
	return stats, nil
}
