package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// The marker is an HTML comment appended to every published post
// body. WriteFreely renders Markdown, so the comment stays invisible
// while letting later runs recover which source entry a post came
// from and whether it is current. The encoding is part of the on-wire
// contract between runs and must stay stable.
var markerRe = regexp.MustCompile(`<!-- gemsync:source=(\S+) hash=([0-9a-f]{64}) -->`)

// Marker ties a remote post back to a source entry.
type Marker struct {
	Key  string // sync key of the source entry
	Hash string // hex sha256 of the source title+body at publish time
}

func (m Marker) String() string {
	return fmt.Sprintf("<!-- gemsync:source=%s hash=%s -->", url.QueryEscape(m.Key), m.Hash)
}

// AppendMarker adds the marker as the final line of a post body.
func AppendMarker(body string, m Marker) string {
	return strings.TrimRight(body, "\n") + "\n\n" + m.String()
}

// ExtractMarker recovers the marker from a remote post body. Posts
// without one were not created by gemsync. The marker is appended as
// the final line, so when the post text itself quotes a marker-shaped
// string the last match wins.
func ExtractMarker(body string) (Marker, bool) {
	matches := markerRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return Marker{}, false
	}

	match := matches[len(matches)-1]
	key, err := url.QueryUnescape(match[1])
	if err != nil {
		return Marker{}, false
	}

	return Marker{Key: key, Hash: match[2]}, true
}

// StripMarker removes the appended marker line from a post body.
// Marker-shaped strings quoted in the post text are content and stay.
func StripMarker(body string) string {
	locs := markerRe.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return body
	}

	last := locs[len(locs)-1]
	return strings.TrimRight(body[:last[0]]+body[last[1]:], "\n")
}

// ContentHash fingerprints a source entry. It hashes the raw gemtext
// rather than the transformed output, so the freshness check stays
// independent of the trim-marker configuration.
func ContentHash(title, body string) string {
	sum := sha256.Sum256([]byte(title + "\n" + body))
	return hex.EncodeToString(sum[:])
}
