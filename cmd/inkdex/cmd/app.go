package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/draftglass/inkdex/internal/config"
	"github.com/draftglass/inkdex/internal/search"
	"github.com/draftglass/inkdex/internal/store"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

// resolveRoot returns the manuscript root directory for a command.
// An empty flag value means the current directory.
func resolveRoot(root string) (string, error) {
	if root == "" || root == "." {
		return os.Getwd()
	}
	return root, nil
}

// openIndex loads configuration and opens the scene index for a
// manuscript root. The caller must Close the returned index.
func openIndex(root string) (*config.Config, *store.SceneIndex, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, nil, err
	}

	idx, err := store.Open(cfg.IndexDir(root))
	if err != nil {
		return nil, nil, err
	}
	return cfg, idx, nil
}

// newEngine builds a search engine from configuration.
func newEngine(cfg *config.Config, idx *store.SceneIndex) *search.Engine {
	opts := search.Options{
		DefaultLimit: cfg.Search.DefaultLimit,
		MentionLimit: cfg.Search.MentionLimit,
		Fuzziness:    cfg.Search.Fuzziness,
		Snippet: search.SnippetOptions{
			Radius:   cfg.Search.SnippetRadius,
			Fallback: cfg.Search.SnippetFallback,
		},
		Aliases: search.DefaultAliases.Merge(cfg.Characters.Aliases),
	}
	return search.NewEngine(idx, opts)
}

// loadScenes reads a scene file: a JSON array of scene objects with
// id, chapterId, text, and startOffset fields.
func loadScenes(path string) ([]manuscript.IndexScene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read scene file %s: %w", path, err)
	}

	var scenes []manuscript.IndexScene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("cannot parse scene file %s: %w", path, err)
	}
	return scenes, nil
}
