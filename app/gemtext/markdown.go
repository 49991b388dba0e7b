package gemtext

import (
	"fmt"
	"strings"
)

// ToMarkdown converts a gemtext document to Markdown. The conversion
// is a pure line-by-line transform: every gemtext line maps onto its
// Markdown equivalent in source order, plain text and blank lines
// pass through unchanged.
func ToMarkdown(text string) string {
	lines := Parse(text)

	var b strings.Builder
	for i, l := range lines {
		switch l.Type {
		case LineHeading:
			b.WriteString(strings.Repeat("#", l.Level))
			b.WriteString(" ")
			b.WriteString(l.Text)
		case LineLink:
			label := l.Label
			if label == "" {
				label = l.URL
			}
			fmt.Fprintf(&b, "[%s](%s)", label, l.URL)
		case LineListItem:
			b.WriteString("- ")
			b.WriteString(l.Text)
		case LineQuote:
			b.WriteString("> ")
			b.WriteString(l.Text)
		case LinePreformatToggle:
			b.WriteString("```")
			b.WriteString(l.Label)
		case LinePreformatted, LineText:
			b.WriteString(l.Text)
		case LineBlank:
			// keep the paragraph boundary
		}

		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
