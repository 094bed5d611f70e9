package index

import (
	"regexp"
	"strconv"
	"strings"
)

// NameExtractor derives candidate character names from scene text during
// indexing. It sits behind an interface so the capitalization heuristic
// can later be swapped for a proper named-entity recognizer without
// touching the Coordinator's contract.
type NameExtractor interface {
	// Extract returns lowercased candidate names found in text.
	Extract(text string) []string
}

// CapitalizedRunExtractor finds runs of one or more capitalized words of
// a minimum length ("Robert", "Mary Jane"). It is deliberately heuristic:
// capitalized non-names slip through and short or lowercase names are
// missed. The field it feeds exists to power fuzzy character lookup, not
// to guarantee recall.
type CapitalizedRunExtractor struct {
	re *regexp.Regexp
}

// NewCapitalizedRunExtractor builds an extractor accepting words of at
// least minWordLength letters. Values below 2 fall back to 3, matching
// the "3+ letters" heuristic.
func NewCapitalizedRunExtractor(minWordLength int) *CapitalizedRunExtractor {
	if minWordLength < 2 {
		minWordLength = 3
	}
	// One capitalized word of minWordLength letters, optionally
	// followed by more, e.g. "Mary Jane Watson".
	word := `[A-Z][a-z]{` + strconv.Itoa(minWordLength-1) + `,}`
	return &CapitalizedRunExtractor{
		re: regexp.MustCompile(`\b` + word + `(?:\s+` + word + `)*\b`),
	}
}

// Extract implements NameExtractor.
func (e *CapitalizedRunExtractor) Extract(text string) []string {
	matches := e.re.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.ToLower(m))
	}
	return names
}

var _ NameExtractor = (*CapitalizedRunExtractor)(nil)
