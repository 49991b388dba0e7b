package sync

import (
	"testing"
)

func TestTrim(t *testing.T) {
	body := "HEADER\n---\nBODY\n===\nFOOTER"

	cases := []struct {
		name     string
		cfg      TransformConfig
		expected string
	}{
		{"both markers", TransformConfig{StripBeforeMarker: "---", StripAfterMarker: "==="}, "\nBODY\n"},
		{"before only", TransformConfig{StripBeforeMarker: "---"}, "\nBODY\n===\nFOOTER"},
		{"after only", TransformConfig{StripAfterMarker: "==="}, "HEADER\n---\nBODY\n"},
		{"no markers", TransformConfig{}, body},
		{"absent markers", TransformConfig{StripBeforeMarker: "@@@", StripAfterMarker: "%%%"}, body},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := NewTransformer(c.cfg).Trim(body)
			if got != c.expected {
				t.Errorf("Expected %q, got %q", c.expected, got)
			}
		})
	}
}

func TestTrimUsesLastAfterMarker(t *testing.T) {
	body := "intro\n===\nmiddle\n===\ntail"
	got := NewTransformer(TransformConfig{StripAfterMarker: "==="}).Trim(body)
	expected := "intro\n===\nmiddle\n"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestTransformerRun(t *testing.T) {
	body := "nav stuff\n---\n# Hello\n\n=> gemini://example.org/ Example\n---\nfooter"
	tr := NewTransformer(TransformConfig{StripBeforeMarker: "---", StripAfterMarker: "---"})

	content := tr.Run("Hello", body)
	if content.Title != "Hello" {
		t.Errorf("Expected title %q, got %q", "Hello", content.Title)
	}

	expected := "\n# Hello\n\n[Example](gemini://example.org/)\n"
	if content.Body != expected {
		t.Errorf("Expected body %q, got %q", expected, content.Body)
	}
}
