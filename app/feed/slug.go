package feed

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// entrySlug derives a post slug from the entry link's final path
// segment, minus any file extension. Falls back to a slugified title
// when the link yields nothing usable.
func entrySlug(link, title string) string {
	if u, err := url.Parse(link); err == nil {
		stem := path.Base(u.Path)
		stem = strings.TrimSuffix(stem, path.Ext(stem))
		if stem != "" && stem != "." && stem != "/" {
			return stem
		}
	}
	return Slugify(title)
}

// Slugify folds a title to a lowercase ASCII slug: diacritics are
// stripped, runs of non-alphanumerics collapse to single hyphens.
func Slugify(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
