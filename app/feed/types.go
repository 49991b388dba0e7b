package feed

import (
	"errors"
	"time"
)

var (
	// ErrMalformedFeed means the document could not be parsed as the
	// requested (or any supported) dialect.
	ErrMalformedFeed = errors.New("malformed feed")

	// ErrUnsupportedDialect means dialect detection was inconclusive
	// and no dialect was declared explicitly.
	ErrUnsupportedDialect = errors.New("unsupported feed dialect")
)

// Dialect selects the gemlog feed format.
type Dialect string

const (
	DialectAuto    Dialect = "auto"
	DialectAtom    Dialect = "atom"
	DialectGemfeed Dialect = "gemfeed"
)

// Feed is a parsed gemlog feed with its entries in native order.
type Feed struct {
	Title   string
	URL     string
	Dialect Dialect
	Entries []*Entry
}

// Entry is one normalized gemlog entry. ID is the sync key: stable
// across fetches as long as the underlying entry is unchanged.
type Entry struct {
	ID          string
	Title       string
	Link        string
	Slug        string
	PublishedAt *time.Time

	// Content holds the raw gemtext body. For the gemfeed dialect the
	// body lives behind the entry link and is loaded on demand;
	// ContentLoaded reports whether Content is populated.
	Content       string
	ContentLoaded bool
}
