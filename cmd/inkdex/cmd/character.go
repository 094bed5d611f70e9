package cmd

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/output"
)

func newCharacterCmd() *cobra.Command {
	var root string
	var format string

	cmd := &cobra.Command{
		Use:   "character <name>",
		Short: "Find scenes mentioning a character",
		Long: `Find scenes that mention a character by any known form of their
name: the name itself, nickname aliases (bob finds Robert), and
title forms (Jane Smith finds Mrs Smith).

Examples:
  inkdex character Robert
  inkdex character "Jane Smith" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			out := output.New(cmd.OutOrStdout())

			dir, err := resolveRoot(root)
			if err != nil {
				return err
			}

			cfg, idx, err := openIndex(dir)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			engine := newEngine(cfg, idx)
			hits, err := engine.FindCharacterMentions(cmd.Context(), name)
			if err != nil {
				return err
			}
			slog.Info("character_mentions_found",
				slog.String("name", name), slog.Int("results", len(hits)))

			return writeHits(cmd, out, name, hits, format)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Manuscript root directory")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}
