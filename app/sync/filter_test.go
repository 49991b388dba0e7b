package sync

import (
	"testing"

	"github.com/gemsync/gemsync/app/feed"
)

func TestFilterNoRules(t *testing.T) {
	entries := []*feed.Entry{{ID: "1"}, {ID: "2"}}

	kept, dropped := NewFilter(nil).Run(entries)
	if len(kept) != 2 || len(dropped) != 0 {
		t.Errorf("Expected all entries kept, got %d kept and %d dropped", len(kept), len(dropped))
	}
}

func TestFilterExcludes(t *testing.T) {
	entries := []*feed.Entry{
		{ID: "1", Title: "A normal post"},
		{ID: "2", Title: "DRAFT: not ready"},
	}

	f := NewFilter([]FilterRule{{Field: "title", Excludes: []string{"draft"}}})
	kept, dropped := f.Run(entries)

	if len(kept) != 1 || kept[0].ID != "1" {
		t.Errorf("Expected only the normal post kept, got %d", len(kept))
	}
	if len(dropped) != 1 || dropped[0].ID != "2" {
		t.Errorf("Expected the draft dropped, got %d", len(dropped))
	}
}

func TestFilterIncludes(t *testing.T) {
	entries := []*feed.Entry{
		{ID: "1", Link: "gemini://example.org/posts/a.gmi"},
		{ID: "2", Link: "gemini://example.org/notes/b.gmi"},
	}

	f := NewFilter([]FilterRule{{Field: "link", Includes: []string{"/posts/"}}})
	kept, dropped := f.Run(entries)

	if len(kept) != 1 || kept[0].ID != "1" {
		t.Errorf("Expected only the posts entry kept, got %d", len(kept))
	}
	if len(dropped) != 1 {
		t.Errorf("Expected 1 entry dropped, got %d", len(dropped))
	}
}

func TestFilterMatchIsCaseInsensitive(t *testing.T) {
	entries := []*feed.Entry{{ID: "1", Title: "Work In Progress"}}

	f := NewFilter([]FilterRule{{Field: "title", Excludes: []string{"work in progress"}}})
	kept, _ := f.Run(entries)

	if len(kept) != 0 {
		t.Error("Expected case-insensitive match to drop the entry")
	}
}
