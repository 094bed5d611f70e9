package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/config"
	"github.com/draftglass/inkdex/internal/output"
	"github.com/draftglass/inkdex/internal/snapshot"
)

func newStatusCmd() *cobra.Command {
	var root string
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index and version status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, root, format)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Manuscript root directory")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

type statusReport struct {
	Root      string `json:"root"`
	IndexPath string `json:"indexPath"`
	Documents int    `json:"documents"`
	Versions  int    `json:"versions"`
}

func runStatus(cmd *cobra.Command, rootFlag, format string) error {
	out := output.New(cmd.OutOrStdout())

	root, err := resolveRoot(rootFlag)
	if err != nil {
		return err
	}

	report := statusReport{Root: root}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	indexDir := cfg.IndexDir(root)
	report.IndexPath = indexDir
	if _, err := os.Stat(indexDir); err == nil {
		_, idx, err := openIndex(root)
		if err != nil {
			return err
		}
		report.Documents = idx.Stats().DocumentCount
		_ = idx.Close()
	}

	versions, err := snapshot.NewStore(cfg.VersionsDir(root)).List()
	if err == nil {
		report.Versions = len(versions)
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out.Statusf("📁", "Manuscript: %s", report.Root)
	out.Statusf("", "Index: %s", report.IndexPath)
	out.Statusf("", "Documents: %d", report.Documents)
	out.Statusf("", "Versions: %d", report.Versions)
	return nil
}
