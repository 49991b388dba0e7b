// Package gemtext implements line-oriented parsing of text/gemini
// documents and their conversion to Markdown.
package gemtext

import (
	"strings"
)

type LineType int

const (
	LineText LineType = iota
	LineBlank
	LineHeading
	LineLink
	LineListItem
	LineQuote
	LinePreformatToggle
	LinePreformatted
)

// Line is a single gemtext line. Gemtext has no inline markup, so a
// line is the unit of structure.
type Line struct {
	Type  LineType
	Text  string // text content, heading text, list item or quote text
	Level int    // heading level (1-3)
	URL   string // link target, as written in the source
	Label string // link label, or alt text on a preformat toggle
}

// Parse splits a gemtext document into typed lines. Lines between
// preformat toggles are returned verbatim as LinePreformatted.
func Parse(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))

	pre := false
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")

		if strings.HasPrefix(l, "```") {
			lines = append(lines, Line{
				Type:  LinePreformatToggle,
				Label: strings.TrimSpace(l[3:]),
			})
			pre = !pre
			continue
		}

		if pre {
			lines = append(lines, Line{Type: LinePreformatted, Text: l})
			continue
		}

		switch {
		case strings.TrimSpace(l) == "":
			lines = append(lines, Line{Type: LineBlank})
		case strings.HasPrefix(l, "=>"):
			lines = append(lines, parseLink(l))
		case strings.HasPrefix(l, "#"):
			lines = append(lines, parseHeading(l))
		case strings.HasPrefix(l, "* "):
			lines = append(lines, Line{Type: LineListItem, Text: l[2:]})
		case strings.HasPrefix(l, ">"):
			lines = append(lines, Line{Type: LineQuote, Text: strings.TrimPrefix(strings.TrimPrefix(l, ">"), " ")})
		default:
			lines = append(lines, Line{Type: LineText, Text: l})
		}
	}

	return lines
}

// Links returns the link lines of a gemtext document in source order.
func Links(text string) []Line {
	var links []Line
	for _, l := range Parse(text) {
		if l.Type == LineLink {
			links = append(links, l)
		}
	}
	return links
}

func parseLink(l string) Line {
	rest := strings.TrimSpace(l[2:])
	if rest == "" {
		// A bare "=>" carries no target; treat it as plain text.
		return Line{Type: LineText, Text: l}
	}

	url, label, found := strings.Cut(rest, " ")
	if !found {
		url, label, _ = strings.Cut(rest, "\t")
	}

	return Line{
		Type:  LineLink,
		URL:   url,
		Label: strings.TrimSpace(label),
	}
}

func parseHeading(l string) Line {
	level := 0
	for level < len(l) && l[level] == '#' && level < 3 {
		level++
	}

	return Line{
		Type:  LineHeading,
		Level: level,
		Text:  strings.TrimSpace(l[level:]),
	}
}
