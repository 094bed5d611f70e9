package store

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ProseAnalyzerName is the analyzer applied to scene text and character
// names: unicode word segmentation plus lowercasing, no stemming. Fuzzy
// and wildcard queries compare raw terms, so stemmed terms would make
// their behavior unpredictable.
const ProseAnalyzerName = "prose"

// buildIndexMapping declares the scene schema:
//
//   - text: analyzed, stored, with term vectors (phrase positions and
//     snippet extraction)
//   - chapter_id: keyword, stored
//   - offset: numeric, stored, not indexed
//   - character_names: analyzed, indexed only
func buildIndexMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()

	err := m.AddCustomAnalyzer(ProseAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add prose analyzer: %w", err)
	}

	text := bleve.NewTextFieldMapping()
	text.Analyzer = ProseAnalyzerName
	text.Store = true
	text.IncludeTermVectors = true
	text.IncludeInAll = false

	chapter := bleve.NewTextFieldMapping()
	chapter.Analyzer = keyword.Name
	chapter.Store = true
	chapter.IncludeInAll = false

	offset := bleve.NewNumericFieldMapping()
	offset.Store = true
	offset.Index = false
	offset.IncludeInAll = false

	names := bleve.NewTextFieldMapping()
	names.Analyzer = ProseAnalyzerName
	names.Store = false
	names.IncludeInAll = false

	scene := bleve.NewDocumentMapping()
	scene.AddFieldMappingsAt(FieldText, text)
	scene.AddFieldMappingsAt(FieldChapterID, chapter)
	scene.AddFieldMappingsAt(FieldOffset, offset)
	scene.AddFieldMappingsAt(FieldCharacterNames, names)

	m.DefaultMapping = scene
	m.DefaultAnalyzer = ProseAnalyzerName

	return m, nil
}
