package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/output"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	root   string
	limit  int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed manuscript",
		Long: `Search indexed scenes.

Quoted phrases must match exactly and in order. Terms with * or ?
match as wildcards. Plain terms match fuzzily, tolerating small
misspellings.

Examples:
  inkdex search "she never told him"
  inkdex search 'light*' --limit 5
  inkdex search teh --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", ".", "Manuscript root directory")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = configured default)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	out := output.New(cmd.OutOrStdout())

	root, err := resolveRoot(opts.root)
	if err != nil {
		return err
	}

	cfg, idx, err := openIndex(root)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	slog.Info("search_started", slog.String("query", query), slog.Int("limit", opts.limit))

	engine := newEngine(cfg, idx)
	hits, err := engine.Search(ctx, query, opts.limit)
	if err != nil {
		return err
	}
	slog.Info("search_complete", slog.Int("results", len(hits)))

	return writeHits(cmd, out, query, hits, opts.format)
}

// writeHits renders a hit list in the requested format.
func writeHits(cmd *cobra.Command, out *output.Writer, query string, hits []manuscript.SearchHit, format string) error {
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		out.Status("", fmt.Sprintf("No results found for %q", query))
		return nil
	}
	out.Hits(hits)
	return nil
}
