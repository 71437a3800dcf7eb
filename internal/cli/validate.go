package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/linefit/internal/usecase"
)

func validateCmd() *cobra.Command {
	var data string
	var format string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check that a dataset loads and has enough points to train",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspaceFlag(cmd))
			if err != nil {
				return err
			}

			path, err := resolveDatasetPath(ws, data)
			if err != nil {
				return err
			}

			rep, vErr := usecase.NewValidateDataset(ws.datasets).Execute(cmd.Context(), path)
			if rep.Path == "" {
				return vErr
			}

			w := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			case "pretty", "":
				fmt.Fprintf(w, "Dataset: %s (%s)\n", rep.Name, rep.Path)
				fmt.Fprintf(w, "Columns: %s / %s\n", rep.Headers.X, rep.Headers.Y)
				fmt.Fprintf(w, "Rows:    %d (%d usable, %d skipped)\n", rep.Rows, rep.Points, rep.Skipped)
				if rep.Fit != nil {
					fmt.Fprintf(w, "Fit:     %s\n", rep.Fit.Equation())
				}
				if vErr == nil {
					fmt.Fprintln(w, "OK")
				}
			default:
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}
			return vErr
		},
	}

	c.Flags().StringVarP(&data, "data", "d", "", "Dataset name or path (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("data")
	return c
}
