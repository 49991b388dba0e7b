package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/gemsync/gemsync/app/cfg"
	"github.com/gemsync/gemsync/app/feed"
	"github.com/gemsync/gemsync/app/gemini"
	"github.com/gemsync/gemsync/app/sync"
)

// Sync runs one synchronization pass of the configured gemlog against
// the blog and prints the run summary.
func Sync(ctx context.Context, c *cfg.Cfg) error {
	client, err := newBlogClient(c)
	if err != nil {
		return err
	}

	fetcher := gemini.NewClient(time.Duration(c.Timeout)*time.Second, c.UserAgent)
	parser := feed.NewParser(c.DateFormat)

	filters := make([]sync.FilterRule, 0, len(c.Filters))
	for _, f := range c.Filters {
		filters = append(filters, sync.FilterRule{
			Field:    f.Field,
			Includes: f.Includes,
			Excludes: f.Excludes,
		})
	}

	runner := sync.NewRunner(fetcher, client, parser, sync.Options{
		GemlogURL: c.GemlogURL,
		Alias:     c.Alias,
		Dialect:   feed.Dialect(c.Dialect),
		Workers:   c.Workers,
		DryRun:    c.DryRun,
		Transform: sync.TransformConfig{
			StripBeforeMarker: c.StripBeforeMarker,
			StripAfterMarker:  c.StripAfterMarker,
		},
		Filters: filters,
	})

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(summary, c.DryRun)

	if summary.Failed > 0 {
		return fmt.Errorf("%d entries failed to sync", summary.Failed)
	}
	return nil
}

func printSummary(s *sync.Summary, dryRun bool) {
	if dryRun {
		fmt.Println("Dry run, no changes were written")
	}

	fmt.Printf("Published: %d\n", s.Published)
	fmt.Printf("Updated:   %d\n", s.Updated)
	fmt.Printf("Skipped:   %d\n", s.Skipped)
	fmt.Printf("Failed:    %d\n", s.Failed)

	for _, o := range s.Outcomes {
		if o.Reason == sync.SkipDuplicateRemote {
			fmt.Printf("Warning: remote post %s is a stale duplicate of %q\n", o.RemoteID, o.Title)
		}
	}

	for _, f := range s.Failures {
		fmt.Printf("Failed (%s): %s: %v\n", f.Kind, f.EntryID, f.Err)
	}
}
