package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/fsworkspace"
	"github.com/aalvaropc/linefit/internal/infra/logger"
	"github.com/aalvaropc/linefit/internal/infra/sgd"
	"github.com/aalvaropc/linefit/internal/infra/workspacefinder"
	"github.com/aalvaropc/linefit/internal/ui/tui"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var workspace string
	var data string

	cmd := &cobra.Command{
		Use:          "linefit",
		Short:        "linefit: fit a line by hand or by gradient descent, in your terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			cleanup, _ := logger.Setup(logger.Config{
				Root:  ws.root,
				Debug: debug,
			})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			var initial *domain.Dataset
			if data != "" {
				path, err := resolveDatasetPath(ws, data)
				if err != nil {
					return err
				}
				ds, err := ws.datasets.LoadDataset(path)
				if err != nil {
					return err
				}
				logger.L().Info("dataset.loaded", "name", ds.Name, "path", ds.Path, "rows", len(ds.Rows))
				initial = &ds
			}

			deps := tui.Deps{
				Root:                 ws.root,
				Config:               ws.cfg,
				WorkspaceLocator:     workspacefinder.NewFinder(),
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Datasets:             ws.datasets,
				Trainer:              sgd.New(),
				Dataset:              initial,
				Logger:               logger.L(),
				Debug:                debug,
			}

			return tui.Run(cmd.Context(), deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .linefit/logs/linefit.log")
	cmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "Dataset name or path to load on start")

	cmd.AddCommand(
		trainCmd(),
		renderCmd(),
		validateCmd(),
		datasetsCmd(),
		initCmd(),
		versionCmd(),
	)
	return cmd
}
