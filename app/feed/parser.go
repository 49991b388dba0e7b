package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/gemsync/gemsync/app/gemtext"
)

// Gemfeed post links carry the publish date as a YYYY-MM-DD prefix on
// the link label.
var gemfeedDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

type Parser struct {
	gofeedParser *gofeed.Parser
	dateFormat   string
}

// NewParser creates a feed parser. dateFormat optionally overrides
// the layout used to parse Atom publish dates that gofeed cannot
// handle on its own; empty means no override.
func NewParser(dateFormat string) *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		dateFormat:   dateFormat,
	}
}

// Run parses a fetched feed document into normalized entries,
// preserving the feed's native entry order. meta is the MIME type
// reported by the fetch (used for dialect detection), base the URL
// the document was fetched from.
func (p *Parser) Run(data []byte, meta string, base *url.URL, dialect Dialect) (*Feed, error) {
	if dialect == DialectAuto || dialect == "" {
		detected, err := detectDialect(data, meta)
		if err != nil {
			return nil, err
		}
		dialect = detected
	}

	switch dialect {
	case DialectAtom:
		return p.parseAtom(data, base)
	case DialectGemfeed:
		return p.parseGemfeed(data, base)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}
}

// detectDialect inspects the MIME type first, then sniffs content.
func detectDialect(data []byte, meta string) (Dialect, error) {
	mime := strings.ToLower(meta)
	switch {
	case strings.Contains(mime, "text/gemini"):
		return DialectGemfeed, nil
	case strings.Contains(mime, "atom+xml"), strings.Contains(mime, "text/xml"), strings.Contains(mime, "application/xml"):
		return DialectAtom, nil
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<feed")) || bytes.HasPrefix(trimmed, []byte("<rss")) {
		return DialectAtom, nil
	}

	for _, l := range gemtext.Parse(string(data)) {
		if l.Type == gemtext.LineHeading || l.Type == gemtext.LineLink {
			return DialectGemfeed, nil
		}
	}

	return "", fmt.Errorf("%w: detection inconclusive [meta=%q]", ErrUnsupportedDialect, meta)
}

func (p *Parser) parseAtom(data []byte, base *url.URL) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	feed := &Feed{
		Title:   parsed.Title,
		URL:     base.String(),
		Dialect: DialectAtom,
	}

	seen := make(map[string]bool)
	for _, item := range parsed.Items {
		id := cmp.Or(item.GUID, item.Link)
		if id == "" {
			slog.Warn("Dropping entry without identifier", "feed", feed.Title, "title", item.Title)
			continue
		}
		if seen[id] {
			slog.Warn("Dropping entry with duplicate identifier", "feed", feed.Title, "id", id)
			continue
		}
		seen[id] = true

		content := cmp.Or(item.Content, item.Description)
		entry := &Entry{
			ID:            id,
			Title:         item.Title,
			Link:          item.Link,
			Slug:          entrySlug(item.Link, item.Title),
			PublishedAt:   p.publishedAt(item),
			Content:       content,
			ContentLoaded: content != "",
		}
		feed.Entries = append(feed.Entries, entry)
	}

	return feed, nil
}

func (p *Parser) publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	if p.dateFormat != "" && item.Published != "" {
		if ts, err := time.Parse(p.dateFormat, item.Published); err == nil {
			return &ts
		}
		slog.Warn("Failed to parse publish date with override format", "date", item.Published, "format", p.dateFormat)
	}
	return nil
}

func (p *Parser) parseGemfeed(data []byte, base *url.URL) (*Feed, error) {
	lines := gemtext.Parse(string(data))

	title := ""
	for _, l := range lines {
		if l.Type == gemtext.LineHeading && l.Level == 1 {
			title = l.Text
			break
		}
	}
	if title == "" {
		return nil, fmt.Errorf("%w: gemfeed is missing a title heading", ErrMalformedFeed)
	}

	feed := &Feed{
		Title:   title,
		URL:     base.String(),
		Dialect: DialectGemfeed,
	}

	seen := make(map[string]bool)
	for _, l := range lines {
		if l.Type != gemtext.LineLink {
			continue
		}

		date := gemfeedDateRe.FindString(l.Label)
		if date == "" {
			// Not a post link (e.g. the feed's own atom.xml link).
			continue
		}

		ref, err := url.Parse(l.URL)
		if err != nil {
			slog.Warn("Dropping entry with unparseable link", "feed", title, "link", l.URL, "error", err)
			continue
		}
		link := base.ResolveReference(ref)

		id := NormalizeLink(link)
		if id == "" {
			slog.Warn("Dropping entry without identifier", "feed", title, "link", l.URL)
			continue
		}
		if seen[id] {
			slog.Warn("Dropping entry with duplicate identifier", "feed", title, "id", id)
			continue
		}
		seen[id] = true

		entryTitle := strings.TrimSpace(strings.TrimPrefix(l.Label, date))
		feed.Entries = append(feed.Entries, &Entry{
			ID:          id,
			Title:       entryTitle,
			Link:        link.String(),
			Slug:        entrySlug(link.String(), entryTitle),
			PublishedAt: gemfeedDate(date),
		})
	}

	return feed, nil
}

// gemfeedDate turns a YYYY-MM-DD label prefix into a best-effort
// publish time. The gemfeed convention places posts at 12:00 UTC.
func gemfeedDate(date string) *time.Time {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}
	ts := day.Add(12 * time.Hour)
	return &ts
}

// NormalizeLink reduces a URL to scheme+host+path, stripping query
// and fragment, so superficially different links to the same post
// produce the same sync key.
func NormalizeLink(u *url.URL) string {
	if u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host), u.EscapedPath())
}
