package search

import (
	"strings"
	"unicode/utf8"

	"github.com/draftglass/inkdex/pkg/manuscript"
)

// SnippetOptions bounds snippet extraction.
type SnippetOptions struct {
	// Radius is the number of bytes kept on each side of a literal
	// match.
	Radius int
	// Fallback is the snippet length in runes when the query does not
	// occur literally in the text.
	Fallback int
}

// DefaultSnippetOptions matches the display defaults.
func DefaultSnippetOptions() SnippetOptions {
	return SnippetOptions{Radius: 60, Fallback: 160}
}

// makeSnippet extracts a display snippet for a matched scene.
//
// It locates the first case-insensitive occurrence of the quote-stripped
// query inside text. When found at byte position p, the snippet covers
// p-radius to p+len(query)+radius (clamped to rune boundaries) with one
// highlight span over the query. When not found (typical for fuzzy and
// wildcard hits) it returns the first `fallback` runes with no spans.
//
// matchPos is the local byte offset of the literal match, or -1.
func makeSnippet(text, rawQuery string, opts SnippetOptions) (snippet string, highlights []manuscript.Span, matchPos int) {
	q := strings.ToLower(strings.Trim(rawQuery, `"`))
	if q == "" {
		return truncateRunes(text, opts.Fallback), nil, -1
	}

	pos := strings.Index(strings.ToLower(text), q)
	if pos < 0 {
		return truncateRunes(text, opts.Fallback), nil, -1
	}

	start := pos - opts.Radius
	if start < 0 {
		start = 0
	}
	end := pos + len(q) + opts.Radius
	if end > len(text) {
		end = len(text)
	}
	start = alignRuneStart(text, start)
	end = alignRuneEnd(text, end)

	span := manuscript.Span{Start: pos - start, End: pos - start + len(q)}
	return text[start:end], []manuscript.Span{span}, pos
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// alignRuneStart moves i backward to the start of the rune containing it.
func alignRuneStart(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// alignRuneEnd moves i forward past any partial rune.
func alignRuneEnd(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
