package sync

import (
	"strings"
	"testing"
)

func TestMarkerRoundTrip(t *testing.T) {
	cases := []string{
		"gemini://example.org/posts/hello.gmi",
		"tag:example.org,2024:entry-1",
		"gemini://example.org/posts/with space & symbols?.gmi",
	}

	for _, key := range cases {
		m := Marker{Key: key, Hash: ContentHash("Title", "Body")}
		body := AppendMarker("Some post body", m)

		got, ok := ExtractMarker(body)
		if !ok {
			t.Fatalf("Expected marker to be recovered from body for key %q", key)
		}
		if got.Key != key {
			t.Errorf("Expected key %q, got %q", key, got.Key)
		}
		if got.Hash != m.Hash {
			t.Errorf("Expected hash %q, got %q", m.Hash, got.Hash)
		}
	}
}

func TestAppendMarkerIsFinalLine(t *testing.T) {
	m := Marker{Key: "gemini://example.org/a.gmi", Hash: ContentHash("a", "b")}
	body := AppendMarker("Line one\n\nLine two\n\n\n", m)

	lines := strings.Split(body, "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "<!-- gemsync:source=") {
		t.Errorf("Expected marker as final line, got %q", last)
	}
	if lines[len(lines)-2] != "" {
		t.Errorf("Expected blank line before marker, got %q", lines[len(lines)-2])
	}
}

func TestExtractMarkerPrefersAppendedMarker(t *testing.T) {
	quoted := Marker{Key: "gemini://example.org/other.gmi", Hash: ContentHash("other", "post")}
	appended := Marker{Key: "gemini://example.org/this.gmi", Hash: ContentHash("this", "post")}

	body := AppendMarker("A post about sync markers, like "+quoted.String(), appended)

	got, ok := ExtractMarker(body)
	if !ok {
		t.Fatal("Expected marker to be recovered")
	}
	if got.Key != appended.Key {
		t.Errorf("Expected the appended marker's key %q, got %q", appended.Key, got.Key)
	}
}

func TestExtractMarkerWithoutMarker(t *testing.T) {
	if _, ok := ExtractMarker("Just an ordinary post.\n\nNothing to see."); ok {
		t.Error("Expected no marker in an unmarked body")
	}
}

func TestStripMarker(t *testing.T) {
	m := Marker{Key: "gemini://example.org/a.gmi", Hash: ContentHash("a", "b")}
	body := AppendMarker("Original content", m)

	if got := StripMarker(body); got != "Original content" {
		t.Errorf("Expected %q, got %q", "Original content", got)
	}
}

func TestStripMarkerKeepsQuotedMarker(t *testing.T) {
	quoted := Marker{Key: "gemini://example.org/other.gmi", Hash: ContentHash("other", "post")}
	appended := Marker{Key: "gemini://example.org/this.gmi", Hash: ContentHash("this", "post")}

	content := "Quoting " + quoted.String() + " inline"
	body := AppendMarker(content, appended)

	if got := StripMarker(body); got != content {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash("Title", "Body")
	b := ContentHash("Title", "Body")
	if a != b {
		t.Errorf("Expected identical hashes, got %q and %q", a, b)
	}

	if ContentHash("Title", "Body") == ContentHash("Title", "Body changed") {
		t.Error("Expected different hashes for different bodies")
	}
	if ContentHash("Title", "Body") == ContentHash("Title changed", "Body") {
		t.Error("Expected different hashes for different titles")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
}
