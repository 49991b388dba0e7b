package sync

import (
	"context"
	"fmt"

	"github.com/gemsync/gemsync/app/feed"
	"github.com/gemsync/gemsync/app/gemini"
)

// Fetcher fetches a document over gemini:// or http(s)://.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*gemini.Response, error)
}

// BodyLoader makes sure an entry's raw body is available, fetching it
// at most once per entry per run.
type BodyLoader interface {
	EnsureBody(ctx context.Context, e *feed.Entry) error
}

type fetchBodyLoader struct {
	fetcher Fetcher
}

func NewBodyLoader(fetcher Fetcher) BodyLoader {
	return &fetchBodyLoader{fetcher: fetcher}
}

func (l *fetchBodyLoader) EnsureBody(ctx context.Context, e *feed.Entry) error {
	if e.ContentLoaded {
		return nil
	}

	resp, err := l.fetcher.Fetch(ctx, e.Link)
	if err != nil {
		return fmt.Errorf("failed to fetch entry body from %s: %w", e.Link, err)
	}

	e.Content = string(resp.Body)
	e.ContentLoaded = true
	return nil
}

// Reconciler decides, for each entry, whether to create, update or
// skip. Decisions are independent across entries: the index is
// read-only and each worker owns the entry it processes.
type Reconciler struct {
	index  *Index
	loader BodyLoader
}

func NewReconciler(index *Index, loader BodyLoader) *Reconciler {
	return &Reconciler{index: index, loader: loader}
}

// Decide resolves one entry against the remote post index. An entry
// whose sync key is unknown remotely is created. A known entry is
// skipped when the remote copy's embedded hash matches the source,
// updated otherwise — including when the remote hash cannot be
// trusted, since an unnecessary update is harmless and idempotent.
func (r *Reconciler) Decide(ctx context.Context, e *feed.Entry) (Decision, error) {
	remote, ok := r.index.Lookup(e.ID)
	if !ok {
		return Decision{Entry: e, Op: OpCreate}, nil
	}

	d := Decision{
		Entry:    e,
		RemoteID: remote.ID,
		Stale:    r.index.Stale(e.ID),
	}

	if err := r.loader.EnsureBody(ctx, e); err != nil {
		return Decision{}, err
	}

	if remote.Hash != "" && remote.Hash == ContentHash(e.Title, e.Content) {
		d.Op = OpSkip
		d.Reason = SkipUpToDate
	} else {
		d.Op = OpUpdate
	}

	return d, nil
}
