package sync

import (
	"context"
	"log/slog"

	"github.com/gemsync/gemsync/app/feed"
	"github.com/gemsync/gemsync/app/writefreely"
)

// PostWriter is the slice of the blog API the executor needs.
type PostWriter interface {
	CreatePost(ctx context.Context, alias string, req writefreely.PostRequest) (*writefreely.Post, error)
	UpdatePost(ctx context.Context, id string, req writefreely.PostRequest) (*writefreely.Post, error)
}

// Executor carries out a decision against the blog API and reports a
// per-entry outcome. Failures are recorded, never escalated: one bad
// entry must not stop the run. Retry policy, if any, lives in the
// HTTP layer, not here.
type Executor struct {
	client      PostWriter
	alias       string
	transformer *Transformer
	loader      BodyLoader
	dryRun      bool
}

func NewExecutor(client PostWriter, alias string, transformer *Transformer, loader BodyLoader, dryRun bool) *Executor {
	return &Executor{
		client:      client,
		alias:       alias,
		transformer: transformer,
		loader:      loader,
		dryRun:      dryRun,
	}
}

func (x *Executor) Execute(ctx context.Context, d Decision) Outcome {
	e := d.Entry

	if d.Op == OpSkip {
		slog.Debug("Skipping entry", "id", e.ID, "reason", string(d.Reason))
		return Outcome{EntryID: e.ID, Title: e.Title, Status: StatusSkipped, RemoteID: d.RemoteID, Reason: d.Reason}
	}

	if err := x.loader.EnsureBody(ctx, e); err != nil {
		return x.failed(e, err)
	}

	content := x.transformer.Run(e.Title, e.Content)
	marker := Marker{Key: e.ID, Hash: ContentHash(e.Title, e.Content)}
	body := AppendMarker(content.Body, marker)

	if x.dryRun {
		slog.Info("Dry run, not writing", "op", d.Op.String(), "id", e.ID, "title", e.Title)
		return x.wouldBe(d)
	}

	switch d.Op {
	case OpCreate:
		req := writefreely.PostRequest{
			Title:   content.Title,
			Body:    body,
			Slug:    e.Slug,
			Created: e.PublishedAt,
		}
		post, err := x.client.CreatePost(ctx, x.alias, req)
		if err != nil {
			return x.failed(e, err)
		}
		slog.Info("Created post", "id", post.ID, "slug", post.Slug, "title", e.Title)
		return Outcome{EntryID: e.ID, Title: e.Title, Status: StatusPublished, RemoteID: post.ID}

	default: // OpUpdate
		req := writefreely.PostRequest{Title: content.Title, Body: body}
		post, err := x.client.UpdatePost(ctx, d.RemoteID, req)
		if err != nil {
			return x.failed(e, err)
		}
		slog.Info("Updated post", "id", post.ID, "title", e.Title)
		return Outcome{EntryID: e.ID, Title: e.Title, Status: StatusUpdated, RemoteID: post.ID}
	}
}

func (x *Executor) wouldBe(d Decision) Outcome {
	status := StatusPublished
	if d.Op == OpUpdate {
		status = StatusUpdated
	}
	return Outcome{EntryID: d.Entry.ID, Title: d.Entry.Title, Status: status, RemoteID: d.RemoteID}
}

func (x *Executor) failed(e *feed.Entry, err error) Outcome {
	kind := classifyError(err)
	slog.Error("Failed to sync entry", "id", e.ID, "kind", string(kind), "error", err)
	return Outcome{EntryID: e.ID, Title: e.Title, Status: StatusFailed, Kind: kind, Err: err}
}
