package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeSnippet_LiteralMatchWindow(t *testing.T) {
	// Given: text with a literal occurrence of the query
	text := strings.Repeat("a", 100) + " they talked for hours " + strings.Repeat("b", 100)
	opts := SnippetOptions{Radius: 10, Fallback: 160}

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "talked", opts)

	// Then: the match position is the byte index of the occurrence
	require.Equal(t, strings.Index(text, "talked"), pos)

	// And: the snippet spans radius bytes each side of the match
	assert.Equal(t, "aaaa they talked for hours", snippet)

	// And: the single highlight covers exactly the query within the snippet
	require.Len(t, spans, 1)
	assert.Equal(t, "talked", snippet[spans[0].Start:spans[0].End])
}

func TestMakeSnippet_CaseInsensitiveMatch(t *testing.T) {
	// Given: a query differing in case from the text
	text := "Margaret TALKED about the weather."
	opts := DefaultSnippetOptions()

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "Talked", opts)

	// Then: the occurrence is found and highlighted
	require.GreaterOrEqual(t, pos, 0)
	require.Len(t, spans, 1)
	assert.Equal(t, "TALKED", snippet[spans[0].Start:spans[0].End])
}

func TestMakeSnippet_QuotesStrippedBeforeMatching(t *testing.T) {
	// Given: a quoted phrase query
	text := "She never told him the truth about the letters."
	opts := DefaultSnippetOptions()

	// When: making a snippet
	_, spans, pos := makeSnippet(text, `"never told him"`, opts)

	// Then: the phrase matches without its quotes
	assert.Equal(t, strings.Index(text, "never told him"), pos)
	require.Len(t, spans, 1)
}

func TestMakeSnippet_NoLiteralMatchFallsBack(t *testing.T) {
	// Given: a query absent from the text (fuzzy hit scenario)
	text := strings.Repeat("word ", 100)
	opts := SnippetOptions{Radius: 60, Fallback: 20}

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "castle", opts)

	// Then: the first fallback runes come back with no highlights
	assert.Equal(t, -1, pos)
	assert.Nil(t, spans)
	assert.Equal(t, 20, len([]rune(snippet)))
}

func TestMakeSnippet_MatchNearStartClampsWindow(t *testing.T) {
	// Given: a match at the very start of the text
	text := "talked and talked until dawn"
	opts := SnippetOptions{Radius: 60, Fallback: 160}

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "talked", opts)

	// Then: the window clamps to the text bounds
	assert.Equal(t, 0, pos)
	assert.Equal(t, text, snippet)
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Start)
}

func TestMakeSnippet_MultibyteBoundariesStayValid(t *testing.T) {
	// Given: multibyte text around the match
	text := strings.Repeat("é", 50) + "talked" + strings.Repeat("ü", 50)
	opts := SnippetOptions{Radius: 15, Fallback: 160}

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "talked", opts)

	// Then: the snippet is valid UTF-8 with the match intact
	require.GreaterOrEqual(t, pos, 0)
	require.Len(t, spans, 1)
	assert.Equal(t, "talked", snippet[spans[0].Start:spans[0].End])
	assert.True(t, strings.Contains(snippet, "talked"))
}

func TestMakeSnippet_EmptyQueryFallsBack(t *testing.T) {
	// Given: an empty query
	text := "some scene text"

	// When: making a snippet
	snippet, spans, pos := makeSnippet(text, "", DefaultSnippetOptions())

	// Then: fallback behavior applies
	assert.Equal(t, -1, pos)
	assert.Nil(t, spans)
	assert.Equal(t, text, snippet)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "abcdef", truncateRunes("abcdef", 10))
	assert.Equal(t, "ééé", truncateRunes("ééééé", 3))
	assert.Equal(t, "", truncateRunes("abc", 0))
}
