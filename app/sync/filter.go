package sync

import (
	"log/slog"
	"strings"

	"github.com/gemsync/gemsync/app/feed"
)

// FilterRule excludes entries from synchronization by substring
// match on a field. Excludes drop matching entries; a non-empty
// Includes list drops entries matching none of its patterns. The
// config file format lives in cfg.Filter; rules arrive here already
// decoded.
type FilterRule struct {
	Field    string // "title" or "link"
	Includes []string
	Excludes []string
}

type Filter struct {
	rules []FilterRule
}

func NewFilter(rules []FilterRule) *Filter {
	return &Filter{rules: rules}
}

// Run partitions entries into those to sync and those filtered out.
func (f *Filter) Run(entries []*feed.Entry) (kept, dropped []*feed.Entry) {
	if len(f.rules) == 0 {
		return entries, nil
	}

	for _, e := range entries {
		if reason := f.match(e); reason != "" {
			slog.Debug("Entry filtered out", "id", e.ID, "rule", reason)
			dropped = append(dropped, e)
		} else {
			kept = append(kept, e)
		}
	}

	return kept, dropped
}

func (f *Filter) match(e *feed.Entry) string {
	for _, rule := range f.rules {
		value := fieldValue(e, rule.Field)

		for _, exclude := range rule.Excludes {
			if matches(value, exclude) {
				return "exclude " + exclude
			}
		}

		if len(rule.Includes) > 0 {
			matched := false
			for _, include := range rule.Includes {
				if matches(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return "include " + strings.Join(rule.Includes, ",")
			}
		}
	}

	return ""
}

func matches(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func fieldValue(e *feed.Entry, field string) string {
	switch field {
	case "title":
		return e.Title
	case "link":
		return e.Link
	default:
		return ""
	}
}
