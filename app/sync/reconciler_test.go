package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gemsync/gemsync/app/feed"
	"github.com/gemsync/gemsync/app/gemini"
)

// fakeFetcher is shared by concurrent workers, so the call counter is
// guarded.
type fakeFetcher struct {
	bodies map[string]string
	err    error

	mu    sync.Mutex
	calls map[string]int
}

func newFakeFetcher(bodies map[string]string) *fakeFetcher {
	return &fakeFetcher{bodies: bodies, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*gemini.Response, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.mu.Lock()
	f.calls[rawURL]++
	f.mu.Unlock()

	body, ok := f.bodies[rawURL]
	if !ok {
		return nil, errors.New("not found: " + rawURL)
	}
	return &gemini.Response{Status: gemini.StatusSuccess, Meta: "text/gemini", Body: []byte(body)}, nil
}

func (f *fakeFetcher) callCount(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[rawURL]
}

func indexOf(posts ...RemotePost) *Index {
	idx := &Index{
		posts: make(map[string]RemotePost),
		stale: make(map[string][]RemotePost),
	}
	for _, p := range posts {
		idx.insert(p)
	}
	return idx
}

func TestDecideCreatesUnknownEntry(t *testing.T) {
	r := NewReconciler(indexOf(), NewBodyLoader(newFakeFetcher(nil)))
	e := &feed.Entry{ID: "gemini://example.org/new.gmi", Title: "New"}

	d, err := r.Decide(context.Background(), e)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Op != OpCreate {
		t.Errorf("Expected create, got %s", d.Op)
	}
}

func TestDecideSkipsUpToDateEntry(t *testing.T) {
	body := "# Hello\n\nUnchanged."
	e := &feed.Entry{ID: "gemini://example.org/a.gmi", Title: "Hello", Link: "gemini://example.org/a.gmi"}

	idx := indexOf(RemotePost{ID: "p1", Key: e.ID, Hash: ContentHash("Hello", body)})
	fetcher := newFakeFetcher(map[string]string{e.Link: body})
	r := NewReconciler(idx, NewBodyLoader(fetcher))

	d, err := r.Decide(context.Background(), e)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Op != OpSkip {
		t.Errorf("Expected skip, got %s", d.Op)
	}
	if d.Reason != SkipUpToDate {
		t.Errorf("Expected reason %q, got %q", SkipUpToDate, d.Reason)
	}
	if d.RemoteID != "p1" {
		t.Errorf("Expected remote ID %q, got %q", "p1", d.RemoteID)
	}
}

func TestDecideUpdatesChangedEntry(t *testing.T) {
	e := &feed.Entry{ID: "gemini://example.org/a.gmi", Title: "Hello", Link: "gemini://example.org/a.gmi"}

	idx := indexOf(RemotePost{ID: "p1", Key: e.ID, Hash: ContentHash("Hello", "old body")})
	fetcher := newFakeFetcher(map[string]string{e.Link: "new body"})
	r := NewReconciler(idx, NewBodyLoader(fetcher))

	d, err := r.Decide(context.Background(), e)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Op != OpUpdate {
		t.Errorf("Expected update, got %s", d.Op)
	}
	if d.RemoteID != "p1" {
		t.Errorf("Expected remote ID %q, got %q", "p1", d.RemoteID)
	}
}

func TestDecideUpdatesWhenRemoteHashMissing(t *testing.T) {
	e := &feed.Entry{ID: "gemini://example.org/a.gmi", Title: "Hello", Link: "gemini://example.org/a.gmi"}

	idx := indexOf(RemotePost{ID: "p1", Key: e.ID})
	fetcher := newFakeFetcher(map[string]string{e.Link: "whatever"})
	r := NewReconciler(idx, NewBodyLoader(fetcher))

	d, err := r.Decide(context.Background(), e)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.Op != OpUpdate {
		t.Errorf("Expected update when the remote hash is unknown, got %s", d.Op)
	}
}

func TestDecideCarriesStaleDuplicates(t *testing.T) {
	key := "gemini://example.org/a.gmi"
	e := &feed.Entry{ID: key, Title: "Hello", Link: key}

	idx := indexOf(
		RemotePost{ID: "old", Key: key, Updated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		RemotePost{ID: "new", Key: key, Updated: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	)
	fetcher := newFakeFetcher(map[string]string{key: "body"})
	r := NewReconciler(idx, NewBodyLoader(fetcher))

	d, err := r.Decide(context.Background(), e)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d.RemoteID != "new" {
		t.Errorf("Expected canonical remote %q, got %q", "new", d.RemoteID)
	}
	if len(d.Stale) != 1 || d.Stale[0].ID != "old" {
		t.Errorf("Expected stale duplicate %q, got %v", "old", d.Stale)
	}
}

func TestDecideBodyFetchError(t *testing.T) {
	e := &feed.Entry{ID: "gemini://example.org/a.gmi", Title: "Hello", Link: "gemini://example.org/a.gmi"}

	idx := indexOf(RemotePost{ID: "p1", Key: e.ID, Hash: ContentHash("Hello", "body")})
	fetcher := newFakeFetcher(nil)
	fetcher.err = errors.New("connection refused")
	r := NewReconciler(idx, NewBodyLoader(fetcher))

	if _, err := r.Decide(context.Background(), e); err == nil {
		t.Error("Expected fetch error to surface")
	}
}

func TestBodyLoaderFetchesOnce(t *testing.T) {
	link := "gemini://example.org/a.gmi"
	fetcher := newFakeFetcher(map[string]string{link: "the body"})
	loader := NewBodyLoader(fetcher)

	e := &feed.Entry{ID: link, Link: link}
	for i := 0; i < 3; i++ {
		if err := loader.EnsureBody(context.Background(), e); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	if e.Content != "the body" {
		t.Errorf("Expected body %q, got %q", "the body", e.Content)
	}
	if fetcher.callCount(link) != 1 {
		t.Errorf("Expected a single fetch, got %d", fetcher.callCount(link))
	}
}
