package tui

import (
	"log/slog"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/ports"
)

type Deps struct {
	Root   string
	Config domain.Config

	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer
	Datasets             ports.DatasetLoader
	Trainer              ports.Trainer

	// Dataset, when set, is loaded into the table on start.
	Dataset *domain.Dataset

	Logger *slog.Logger
	Debug  bool
}
