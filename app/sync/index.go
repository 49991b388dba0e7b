package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gemsync/gemsync/app/writefreely"
)

// PostLister is the slice of the blog API the index needs.
type PostLister interface {
	Posts(ctx context.Context, alias string, page int) ([]writefreely.Post, int, error)
}

// RemotePost is a blog post that carries a recoverable sync marker.
type RemotePost struct {
	ID      string
	Slug    string
	Key     string
	Hash    string
	Updated time.Time
}

// Index maps sync keys to remote posts. Built once per run from the
// full (paginated) collection listing, then treated as immutable and
// shared read-only across workers.
type Index struct {
	posts map[string]RemotePost
	stale map[string][]RemotePost
}

// BuildIndex walks the collection and indexes every post with a
// recoverable marker. Posts without a marker were not created by this
// tool and are left alone. When several posts share a sync key (a
// leftover from an interrupted run), the most recently updated one
// becomes canonical and the rest are kept for duplicate reporting;
// nothing is ever deleted.
func BuildIndex(ctx context.Context, lister PostLister, alias string) (*Index, error) {
	idx := &Index{
		posts: make(map[string]RemotePost),
		stale: make(map[string][]RemotePost),
	}

	fetched := 0
	for page := 1; ; page++ {
		posts, total, err := lister.Posts(ctx, alias, page)
		if err != nil {
			return nil, fmt.Errorf("failed to build remote post index: %w", err)
		}

		for _, p := range posts {
			marker, ok := ExtractMarker(p.Body)
			if !ok {
				slog.Debug("Ignoring remote post without sync marker", "id", p.ID, "slug", p.Slug)
				continue
			}
			idx.insert(RemotePost{
				ID:      p.ID,
				Slug:    p.Slug,
				Key:     marker.Key,
				Hash:    marker.Hash,
				Updated: p.Updated,
			})
		}

		fetched += len(posts)
		if len(posts) == 0 || fetched >= total {
			break
		}
	}

	slog.Debug("Remote post index built", "alias", alias, "indexed", len(idx.posts), "scanned", fetched)
	return idx, nil
}

func (i *Index) insert(p RemotePost) {
	current, ok := i.posts[p.Key]
	if !ok {
		i.posts[p.Key] = p
		return
	}

	slog.Warn("Multiple remote posts share a sync key", "key", p.Key, "kept", current.ID, "other", p.ID)
	if newer(p, current) {
		i.posts[p.Key] = p
		i.stale[p.Key] = append(i.stale[p.Key], current)
	} else {
		i.stale[p.Key] = append(i.stale[p.Key], p)
	}
}

// newer reports whether a should win the canonical selection over b.
// Ties on the update time fall back to the post ID so the choice is
// deterministic.
func newer(a, b RemotePost) bool {
	if !a.Updated.Equal(b.Updated) {
		return a.Updated.After(b.Updated)
	}
	return a.ID > b.ID
}

// Lookup returns the canonical remote post for a sync key.
func (i *Index) Lookup(key string) (RemotePost, bool) {
	p, ok := i.posts[key]
	return p, ok
}

// Stale returns the non-canonical duplicates for a sync key.
func (i *Index) Stale(key string) []RemotePost {
	return i.stale[key]
}

// Len is the number of distinct sync keys indexed.
func (i *Index) Len() int {
	return len(i.posts)
}
