package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_SingleNames(t *testing.T) {
	// Given: text with capitalized names
	e := NewCapitalizedRunExtractor(3)

	// When: extracting
	names := e.Extract("Robert met Mary near the harbor.")

	// Then: both names are found, lowercased
	assert.Contains(t, names, "robert")
	assert.Contains(t, names, "mary")
}

func TestExtract_MultiWordRuns(t *testing.T) {
	// Given: a run of capitalized words
	e := NewCapitalizedRunExtractor(3)

	// When: extracting
	names := e.Extract("She wrote to Mary Jane Watson about it.")

	// Then: the run is one candidate
	assert.Contains(t, names, "mary jane watson")
}

func TestExtract_ShortWordsIgnored(t *testing.T) {
	// Given: capitalized words below the minimum length
	e := NewCapitalizedRunExtractor(3)

	// When: extracting
	names := e.Extract("Al and Bo went home.")

	// Then: neither qualifies
	assert.NotContains(t, names, "al")
	assert.NotContains(t, names, "bo")
}

func TestExtract_LowercaseTextYieldsNothing(t *testing.T) {
	// Given: text with no capitalized words
	e := NewCapitalizedRunExtractor(3)

	// When/Then: nothing is extracted
	assert.Nil(t, e.Extract("the rain fell all night on the tin roof"))
}

func TestExtract_AllCapsWordsIgnored(t *testing.T) {
	// Given: an all-caps word (acronym, shouting)
	e := NewCapitalizedRunExtractor(3)

	// When: extracting
	names := e.Extract("The NASA report mentioned Robert.")

	// Then: only the name-shaped word qualifies
	assert.NotContains(t, names, "nasa")
	assert.Contains(t, names, "robert")
}

func TestNewCapitalizedRunExtractor_ClampsMinLength(t *testing.T) {
	// Given: an out-of-range minimum word length

	// When: constructing
	e := NewCapitalizedRunExtractor(0)

	// Then: the default heuristic applies (3+ letters)
	names := e.Extract("Jo and Robert left.")
	assert.NotContains(t, names, "jo")
	assert.Contains(t, names, "robert")
}
