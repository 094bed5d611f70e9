package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftglass/inkdex/internal/config"
	"github.com/draftglass/inkdex/internal/output"
	"github.com/draftglass/inkdex/internal/snapshot"
)

func newVersionsCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Manage manuscript version snapshots",
		Long: `Manage manuscript version snapshots.

Each version is a named point-in-time copy of the manuscript state,
stored under .inkdex/versions/. Deleted versions go to a trash
directory and can be restored by hand.`,
	}

	cmd.PersistentFlags().StringVar(&root, "root", ".", "Manuscript root directory")

	cmd.AddCommand(newVersionsListCmd(&root))
	cmd.AddCommand(newVersionsCreateCmd(&root))
	cmd.AddCommand(newVersionsSaveCmd(&root))
	cmd.AddCommand(newVersionsShowCmd(&root))
	cmd.AddCommand(newVersionsDeleteCmd(&root))
	cmd.AddCommand(newVersionsCompareCmd(&root))

	return cmd
}

func openSnapshots(root string) (*snapshot.Store, error) {
	dir, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	return snapshot.NewStore(cfg.VersionsDir(dir)), nil
}

func newVersionsListCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			versions, err := store.List()
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				out.Status("", "No versions yet")
				return nil
			}

			for _, v := range versions {
				created := time.UnixMilli(v.CreatedAt).Format("2006-01-02 15:04")
				out.Statusf("", "%s  %s  (%s)", v.ID, v.Name, created)
			}
			return nil
		},
	}
}

func newVersionsCreateCmd(root *string) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			meta, err := store.Create("", args[0], parent, nil)
			if err != nil {
				return err
			}
			out.Successf("Created version %s (%s)", meta.Name, meta.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent version id")
	return cmd
}

func newVersionsSaveCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <id> <payload.json>",
		Short: "Save manuscript state into a version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			payload, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("cannot read payload file: %w", err)
			}
			if err := store.Save(args[0], payload); err != nil {
				return err
			}
			out.Successf("Saved snapshot for version %s", args[0])
			return nil
		},
	}
}

func newVersionsShowCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a version's snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			payload, err := store.Load(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
}

func newVersionsDeleteCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Move a version to trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			out.Successf("Moved version %s to trash", args[0])
			return nil
		},
	}
}

func newVersionsCompareCmd(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id-a> <id-b>",
		Short: "Compare two versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			store, err := openSnapshots(*root)
			if err != nil {
				return err
			}

			cmp, err := store.Compare(args[0], args[1])
			if err != nil {
				return err
			}

			out.Statusf("", "%s vs %s", cmp.A.Name, cmp.B.Name)
			out.Statusf("", "Avg confidence delta: %+.3f", cmp.AvgConfidenceDelta)
			out.Statusf("", "Spoiler delta: %+d", cmp.SpoilerDelta)
			out.Statusf("", "Decisions changed: %d", len(cmp.DecisionsChanged))
			for _, d := range cmp.DecisionsChanged {
				out.Status("", "  "+d.ID)
			}
			return nil
		},
	}
}
