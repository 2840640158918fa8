package search

import (
	"fmt"
	"html"
	"strings"

	"chatlens/internal/transcript"
)

// Span is one matched byte range in the original text.
type Span struct {
	Start, End int
}

// FoldSpans locates every case-insensitive literal occurrence of query in s,
// left to right and non-overlapping. Lowercasing can change a rune's byte
// length (İ, Ⱥ), so the lowered text is built rune by rune with a per-byte
// table mapping back into s; an occurrence that covers only part of one
// rune's lowered form is not a match of the original text and is skipped.
func FoldSpans(s, query string) []Span {
	query = strings.ToLower(query)
	if query == "" || s == "" {
		return nil
	}

	var lowered strings.Builder
	lowered.Grow(len(s))
	back := make([]int, 0, len(s)+1)
	for i, r := range s {
		low := strings.ToLower(string(r))
		lowered.WriteString(low)
		for range low {
			back = append(back, i)
		}
	}
	text := lowered.String()

	aligned := func(p int) bool {
		return p == 0 || p == len(text) || back[p] != back[p-1]
	}

	var spans []Span
	from := 0
	for {
		rel := strings.Index(text[from:], query)
		if rel < 0 {
			return spans
		}
		start := from + rel
		end := start + len(query)
		if !aligned(start) || !aligned(end) {
			from = start + 1
			continue
		}
		orig := Span{Start: back[start], End: len(s)}
		if end < len(text) {
			orig.End = back[end]
		}
		spans = append(spans, orig)
		from = end
	}
}

// Highlighter wraps every case-insensitive literal occurrence of a query in
// a numbered anchor marker. One Highlighter spans a whole conversation so
// marker ids stay globally unique and ordered, which is what lets the page
// jump match-to-match.
type Highlighter struct {
	query string
	next  int
}

func NewHighlighter(query string) *Highlighter {
	return &Highlighter{query: strings.ToLower(strings.TrimSpace(query))}
}

// Matches returns how many markers have been emitted so far.
func (h *Highlighter) Matches() int { return h.next }

// Apply highlights one block of plain text. Lines carrying a file-content
// heading are passed through untouched so file names in headings never gain
// markers.
func (h *Highlighter) Apply(text string) string {
	return h.apply(text, func(s string) string { return s })
}

// ApplyHTML highlights one block of raw text and HTML-escapes everything
// outside the markers. Matching happens before escaping, so a query never
// matches inside an escaped entity ("lt" against "&lt;").
func (h *Highlighter) ApplyHTML(text string) string {
	return h.apply(text, html.EscapeString)
}

func (h *Highlighter) apply(text string, esc func(string) string) string {
	if h.query == "" || text == "" {
		return esc(text)
	}

	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), transcript.FileHeadingPrefix) {
			out.WriteString(esc(line))
			continue
		}
		out.WriteString(h.applyLine(line, esc))
	}
	return out.String()
}

func (h *Highlighter) applyLine(line string, esc func(string) string) string {
	spans := FoldSpans(line, h.query)
	if len(spans) == 0 {
		return esc(line)
	}

	var out strings.Builder
	last := 0
	for _, span := range spans {
		out.WriteString(esc(line[last:span.Start]))
		fmt.Fprintf(&out, `<mark id="match-%d" class="search-match">%s</mark>`,
			h.next, esc(line[span.Start:span.End]))
		h.next++
		last = span.End
	}
	out.WriteString(esc(line[last:]))
	return out.String()
}
