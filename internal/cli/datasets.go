package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func datasetsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect datasets in a workspace",
	}

	c.AddCommand(datasetsListCmd())
	return c
}

func datasetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspaceFlag(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			refs, err := ws.datasets.ListDatasets(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Fprintln(out, "(no datasets found)")
				return nil
			}

			fmt.Fprintf(out, "Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				fmt.Fprintf(out, "- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}
}
