package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/linefit/internal/app/template"
	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/logger"
	"github.com/aalvaropc/linefit/internal/infra/plotcanvas"
	"github.com/aalvaropc/linefit/internal/render"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
	"github.com/aalvaropc/linefit/internal/usecase/table"
)

func renderCmd() *cobra.Command {
	var data string
	var out string
	var slope, intercept float64
	var fit bool
	var noReadouts bool

	c := &cobra.Command{
		Use:   "render",
		Short: "Render a dataset and a line to PNG or SVG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspaceFlag(cmd))
			if err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			cleanup, _ := logger.Setup(logger.Config{Root: ws.root, Debug: debug})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			path, err := resolveDatasetPath(ws, data)
			if err != nil {
				return err
			}
			ds, err := ws.datasets.LoadDataset(path)
			if err != nil {
				return err
			}
			points := table.FromRows(ds.Rows).Points()

			line := domain.Line{Slope: slope, Intercept: intercept}
			if fit {
				ls, ok := loss.LeastSquares(points)
				if !ok {
					return &domain.OpError{
						Op:   "cli.render",
						Kind: domain.KindInsufficientData,
						Path: path,
						Err:  fmt.Errorf("least-squares fit needs 2+ points with distinct x: %w", domain.ErrNotEnoughPoints),
					}
				}
				line = ls
			}

			dst, err := exportPath(ws, out, ds.Name, time.Now())
			if err != nil {
				return err
			}
			readouts, err := plotcanvas.Export(dst, render.Scene{Points: points, Line: line, ShowReadouts: !noReadouts})
			if err != nil {
				return err
			}

			logger.L().Info("export.written", "path", dst, "points", len(points), "slope", line.Slope, "intercept", line.Intercept)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Wrote %s\n", dst)
			fmt.Fprintf(w, "%s  MSE: %s  SSE: %s\n", readouts.Equation, readouts.MSEText(), readouts.SSEText())
			return nil
		},
	}

	c.Flags().StringVarP(&data, "data", "d", "", "Dataset name or path (required)")
	c.Flags().StringVarP(&out, "out", "o", "", "Output file (.png or .svg); defaults to <exports_dir>/<export_name>")
	c.Flags().Float64Var(&slope, "slope", 0, "Line slope")
	c.Flags().Float64Var(&intercept, "intercept", 0, "Line intercept")
	c.Flags().BoolVar(&fit, "fit", false, "Use the least-squares line instead of --slope/--intercept")
	c.Flags().BoolVar(&noReadouts, "no-readouts", false, "Omit the equation and loss text")

	_ = c.MarkFlagRequired("data")
	return c
}

// exportPath picks the output file. Relative --out values are taken as given;
// the default lands in the workspace exports dir, named by paths.export_name.
func exportPath(ws *workspaceCtx, out, datasetName string, now time.Time) (string, error) {
	if strings.TrimSpace(out) != "" {
		return filepath.Clean(out), nil
	}
	return template.ExportPath(ws.root, ws.cfg.Paths, datasetName, now)
}
