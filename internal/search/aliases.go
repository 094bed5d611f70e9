package search

import "strings"

// AliasTable maps a lowercase nickname to its canonical name variants.
type AliasTable map[string][]string

// DefaultAliases is the built-in nickname table. It is intentionally
// small; manuscripts can extend it through configuration. A proper
// solution would derive aliases from manuscript metadata.
var DefaultAliases = AliasTable{
	"bob":  {"robert", "bobby"},
	"rob":  {"robert"},
	"liz":  {"elizabeth"},
	"beth": {"elizabeth"},
	"bill": {"william"},
	"will": {"william"},
	"meg":  {"margaret"},
	"kate": {"katherine"},
}

// Merge returns a table containing the receiver's entries plus extra,
// with extra's entries appended per key. Keys and values are lowercased.
func (t AliasTable) Merge(extra map[string][]string) AliasTable {
	merged := make(AliasTable, len(t)+len(extra))
	for k, v := range t {
		merged[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		key := strings.ToLower(k)
		for _, variant := range v {
			merged[key] = append(merged[key], strings.ToLower(variant))
		}
	}
	return merged
}

// Variants builds the search variant set for a character name: the
// literal name, any alias-table entries, and, for exactly two-word
// names, honorific forms built from the last word ("mr smith",
// "mrs smith", "ms smith").
func (t AliasTable) Variants(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return nil
	}

	variants := []string{lower}
	variants = append(variants, t[lower]...)

	if words := strings.Fields(lower); len(words) == 2 {
		last := words[1]
		variants = append(variants,
			"mr "+last,
			"mrs "+last,
			"ms "+last,
		)
	}

	return variants
}
