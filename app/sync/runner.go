package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gemsync/gemsync/app/feed"
)

// BlogClient is the full blog API surface the runner needs.
type BlogClient interface {
	PostLister
	PostWriter
	Me(ctx context.Context) (string, error)
}

// Options configures one synchronization run.
type Options struct {
	GemlogURL string
	Alias     string
	Dialect   feed.Dialect
	Workers   int
	DryRun    bool
	Transform TransformConfig
	Filters   []FilterRule
}

// Runner drives the whole pipeline: fetch feed, parse, build the
// remote index once, then reconcile and execute every entry with
// bounded worker concurrency. Only failures that prevent establishing
// ground truth (feed, index, auth) abort the run; per-entry failures
// are recorded and the run continues.
type Runner struct {
	fetcher Fetcher
	client  BlogClient
	parser  *feed.Parser
	opts    Options
}

func NewRunner(fetcher Fetcher, client BlogClient, parser *feed.Parser, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		fetcher: fetcher,
		client:  client,
		parser:  parser,
		opts:    opts,
	}
}

func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	user, err := r.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate against the blog: %w", err)
	}
	slog.Info("Starting sync", "user", user, "alias", r.opts.Alias, "gemlog", r.opts.GemlogURL)

	base, err := url.Parse(r.opts.GemlogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gemlog URL %q: %w", r.opts.GemlogURL, err)
	}

	resp, err := r.fetcher.Fetch(ctx, r.opts.GemlogURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	parsed, err := r.parser.Run(resp.Body, resp.Meta, base, r.opts.Dialect)
	if err != nil {
		return nil, err
	}
	slog.Info("Parsed feed", "title", parsed.Title, "dialect", string(parsed.Dialect), "entries", len(parsed.Entries))

	entries, filtered := NewFilter(r.opts.Filters).Run(parsed.Entries)

	index, err := BuildIndex(ctx, r.client, r.opts.Alias)
	if err != nil {
		return nil, err
	}

	loader := NewBodyLoader(r.fetcher)
	reconciler := NewReconciler(index, loader)
	executor := NewExecutor(r.client, r.opts.Alias, NewTransformer(r.opts.Transform), loader, r.opts.DryRun)

	// Decisions are independent across entries, so fan out over a
	// bounded worker pool. Results land in per-entry slots to keep
	// the summary order deterministic.
	results := make([][]Outcome, len(entries))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.process(ctx, reconciler, executor, entries[i])
			}
		}()
	}

	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{}
	for _, e := range filtered {
		summary.add(Outcome{EntryID: e.ID, Title: e.Title, Status: StatusSkipped, Reason: SkipFiltered})
	}
	for _, outcomes := range results {
		for _, o := range outcomes {
			summary.add(o)
		}
	}

	slog.Info("Sync complete",
		"published", summary.Published,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return summary, nil
}

func (r *Runner) process(ctx context.Context, reconciler *Reconciler, executor *Executor, e *feed.Entry) []Outcome {
	decision, err := reconciler.Decide(ctx, e)
	if err != nil {
		kind := classifyError(err)
		slog.Error("Failed to reconcile entry", "id", e.ID, "kind", string(kind), "error", err)
		return []Outcome{{EntryID: e.ID, Title: e.Title, Status: StatusFailed, Kind: kind, Err: err}}
	}

	var outcomes []Outcome
	for _, stale := range decision.Stale {
		outcomes = append(outcomes, Outcome{
			EntryID:  e.ID,
			Title:    e.Title,
			Status:   StatusSkipped,
			Reason:   SkipDuplicateRemote,
			RemoteID: stale.ID,
		})
	}

	return append(outcomes, executor.Execute(ctx, decision))
}
