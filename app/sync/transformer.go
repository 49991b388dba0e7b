package sync

import (
	"strings"

	"github.com/gemsync/gemsync/app/gemtext"
)

// TransformConfig holds the optional trimming markers applied to
// every entry body before conversion.
type TransformConfig struct {
	StripBeforeMarker string
	StripAfterMarker  string
}

// Content is an entry body ready for publishing.
type Content struct {
	Title string
	Body  string
}

// Transformer trims an entry body by the configured markers and
// converts the remaining gemtext to Markdown. Pure function of its
// inputs.
type Transformer struct {
	cfg TransformConfig
}

func NewTransformer(cfg TransformConfig) *Transformer {
	return &Transformer{cfg: cfg}
}

func (t *Transformer) Run(title, body string) *Content {
	return &Content{
		Title: title,
		Body:  gemtext.ToMarkdown(t.Trim(body)),
	}
}

// Trim applies stripBefore then stripAfter. A configured marker that
// does not occur in the body is a no-op, never an error: sync must
// not fail just because one post lacks an optional marker.
func (t *Transformer) Trim(body string) string {
	if t.cfg.StripBeforeMarker != "" {
		if i := strings.Index(body, t.cfg.StripBeforeMarker); i >= 0 {
			body = body[i+len(t.cfg.StripBeforeMarker):]
		}
	}

	if t.cfg.StripAfterMarker != "" {
		if i := strings.LastIndex(body, t.cfg.StripAfterMarker); i >= 0 {
			body = body[:i]
		}
	}

	return body
}
