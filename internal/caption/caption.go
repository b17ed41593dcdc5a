// Package caption assembles post captions: signature suffix, optional
// auto-title promotion, and a single-pass render to Telegram HTML.
//
// Styling is modeled as explicit spans rather than string rewriting, so
// operator text containing markup-like sequences is escaped exactly once
// and can never collide with the bold tags the renderer emits.
package caption

import "strings"

// Span is one run of caption text with its styling.
type Span struct {
	Text string
	Bold bool
}

// Options controls caption assembly.
type Options struct {
	// Autosign is appended to every non-empty caption on its own line,
	// and stands alone when the caption is empty.
	Autosign string

	// AutoTitle promotes the first non-blank line to a bold title when it
	// reads like a headline (5-90 runes with body text following).
	AutoTitle bool
}

const (
	minTitleRunes = 5
	maxTitleRunes = 90
)

// Compose builds the styled spans for a post body. The result may be empty
// when both the text and the autosign are empty.
func Compose(text string, opts Options) []Span {
	text = normalize(text)

	var spans []Span
	if opts.AutoTitle {
		if title, body, ok := splitTitle(text); ok {
			spans = append(spans,
				Span{Text: title, Bold: true},
				Span{Text: "\n\n" + body},
			)
		}
	}
	if spans == nil && text != "" {
		spans = []Span{{Text: text}}
	}

	if sign := strings.TrimSpace(opts.Autosign); sign != "" {
		if len(spans) == 0 {
			return []Span{{Text: sign}}
		}
		spans = append(spans, Span{Text: "\n" + sign})
	}
	return spans
}

// RenderHTML escapes each span once and wraps bold spans in <b> tags.
func RenderHTML(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Bold {
			b.WriteString("<b>")
			b.WriteString(escape(s.Text))
			b.WriteString("</b>")
			continue
		}
		b.WriteString(escape(s.Text))
	}
	return b.String()
}

// Build composes and renders in one step.
func Build(text string, opts Options) string {
	return RenderHTML(Compose(text, opts))
}

// normalize collapses line endings and trims surrounding whitespace.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// splitTitle returns the headline and remaining body when the first
// non-blank line qualifies as a title.
func splitTitle(text string) (title, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return "", "", false
	}
	first = strings.TrimSpace(first)
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", false
	}
	n := len([]rune(first))
	if n < minTitleRunes || n > maxTitleRunes {
		return "", "", false
	}
	return first, rest, true
}

// escape applies the three entity replacements Telegram HTML requires.
// html.EscapeString also rewrites quotes, which churns captions needlessly.
func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
