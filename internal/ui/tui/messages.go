package tui

import (
	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/render"
	"github.com/aalvaropc/linefit/internal/usecase/session"
)

type datasetsListedMsg struct {
	refs []domain.DatasetRef
	err  error
}

type datasetLoadedMsg struct {
	ds  domain.Dataset
	err error
}

type exportDoneMsg struct {
	path     string
	readouts render.Readouts
	err      error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

// trainingMsg carries one event from the training goroutine.
type trainingMsg struct {
	ev session.Event
}

type trainingClosedMsg struct{}
