package tui

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/plotcanvas"
	"github.com/aalvaropc/linefit/internal/render"
	"github.com/aalvaropc/linefit/internal/usecase/session"
	"github.com/aalvaropc/linefit/internal/usecase/train"
)

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}
		err := deps.WorkspaceInitializer.Init(root, false)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdListDatasets(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.Datasets == nil {
			return datasetsListedMsg{err: errors.New("dataset loader is nil")}
		}
		refs, err := deps.Datasets.ListDatasets(root)
		return datasetsListedMsg{refs: refs, err: err}
	}
}

func cmdLoadDataset(deps Deps, path string) tea.Cmd {
	return func() tea.Msg {
		if deps.Datasets == nil {
			return datasetLoadedMsg{err: errors.New("dataset loader is nil")}
		}
		ds, err := deps.Datasets.LoadDataset(filepath.Clean(path))
		return datasetLoadedMsg{ds: ds, err: err}
	}
}

func cmdExport(path string, sc render.Scene) tea.Cmd {
	return func() tea.Msg {
		r, err := plotcanvas.Export(path, sc)
		return exportDoneMsg{path: path, readouts: r, err: err}
	}
}

func listenTraining(ch <-chan trainingMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return trainingClosedMsg{}
		}
		return msg
	}
}

// startTrainingAsync runs one training session in a goroutine. The channel is
// unbuffered so the run advances only as fast as the UI consumes updates:
// each epoch is applied and painted before the next one is delivered.
func startTrainingAsync(
	ctx context.Context,
	orch *train.Orchestrator,
	req session.StartRequest,
	log *slog.Logger,
) (<-chan trainingMsg, tea.Cmd) {
	ch := make(chan trainingMsg)

	if log == nil {
		log = slog.Default()
	}

	send := func(ev session.Event) {
		select {
		case ch <- trainingMsg{ev: ev}:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(ch)

		obs := train.ObserverFuncs{
			Status: func(s domain.Status) { send(session.TrainingStatus{Status: s}) },
			Epoch:  func(u domain.EpochUpdate) { send(session.TrainingEpoch{Update: u}) },
		}

		res, err := orch.Run(ctx, req.Points, req.Line, req.Config, obs)
		if err != nil {
			log.Warn("tui.training.failed", "err", err, "outcome", string(res.Outcome))
		}
		send(session.TrainingFinished{Result: res})
	}()

	return ch, listenTraining(ch)
}
