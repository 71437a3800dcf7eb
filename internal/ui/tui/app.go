package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/linefit/internal/app/template"
	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/sgd"
	"github.com/aalvaropc/linefit/internal/infra/termcanvas"
	"github.com/aalvaropc/linefit/internal/render"
	"github.com/aalvaropc/linefit/internal/usecase/session"
	"github.com/aalvaropc/linefit/internal/usecase/table"
	"github.com/aalvaropc/linefit/internal/usecase/train"
)

type pane int

const (
	paneGraph pane = iota
	paneTable
	paneTraining
	paneCount
)

type mode int

const (
	modeNormal mode = iota
	modeEdit
	modePicker
)

type trainField int

const (
	fieldEpochs trainField = iota
	fieldLearningRate
)

// headerRow is the table cursor position of the column headers.
const headerRow = -1

type datasetItem struct{ ref domain.DatasetRef }

func (d datasetItem) Title() string       { return d.ref.Name }
func (d datasetItem) Description() string { return d.ref.Path }
func (d datasetItem) FilterValue() string { return d.ref.Name }

type model struct {
	theme Theme
	keys  keyMap
	help  help.Model
	deps  Deps
	log   *slog.Logger
	now   func() time.Time

	ctx     context.Context
	orch    *train.Orchestrator
	trainCh <-chan trainingMsg

	state    session.State
	canvas   *termcanvas.Canvas
	plot     string
	readouts render.Readouts

	focus pane
	mode  mode
	row   int
	col   table.Column
	field trainField

	input    textinput.Model
	editOrig string

	picker list.Model

	workspaceFound bool
	workspaceRoot  string

	width, height int
	toast         string
}

func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, deps)
	p := tea.NewProgram(wrapSafe(m, m.log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, deps Deps) model {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "tui")

	trainer := deps.Trainer
	if trainer == nil {
		trainer = sgd.New()
	}

	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 32
	in.Width = 8

	l := list.New(nil, list.NewDefaultDelegate(), 40, 14)
	l.Title = "Datasets"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := model{
		theme:  DefaultTheme(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		deps:   deps,
		log:    log,
		now:    time.Now,
		ctx:    ctx,
		orch:   train.New(trainer, train.WithLogger(log), train.WithYield(deps.Config.Training.Yield)),
		state:  session.NewState(deps.Config.TrainingConfig()),
		canvas: termcanvas.New(60, 20),
		input:  in,
		picker: l,

		workspaceRoot: deps.Root,
	}

	if deps.WorkspaceLocator != nil && deps.Root != "" {
		if root, err := deps.WorkspaceLocator.FindRoot(deps.Root); err == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
		}
	}

	if deps.Dataset != nil {
		m.state, _ = session.Reduce(m.state, session.DatasetLoaded{Dataset: *deps.Dataset})
	}
	m.redraw()

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case trainingMsg:
		m.dispatch(msg.ev)
		if _, done := msg.ev.(session.TrainingFinished); done {
			m.trainCh = nil
			return m, nil
		}
		return m, listenTraining(m.trainCh)

	case trainingClosedMsg:
		m.trainCh = nil
		if m.state.Training {
			m.dispatch(session.TrainingFinished{Result: domain.TrainingResult{
				Outcome: domain.OutcomeStopped,
				Line:    m.state.Line,
			}})
		}
		return m, nil

	case datasetsListedMsg:
		if msg.err != nil {
			m.log.Warn("tui.datasets.list_failed", "err", msg.err)
			m.toast = userMessage(msg.err)
			return m, nil
		}
		if len(msg.refs) == 0 {
			m.toast = "No datasets in " + m.deps.Config.Paths.DataDir + "/"
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, datasetItem{ref: r})
		}
		m.mode = modePicker
		m.toast = ""
		return m, m.picker.SetItems(items)

	case datasetLoadedMsg:
		if msg.err != nil {
			m.log.Warn("tui.dataset.load_failed", "err", msg.err)
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.log.Info("dataset.loaded", "name", msg.ds.Name, "path", msg.ds.Path, "rows", len(msg.ds.Rows))
		m.row, m.col = 0, table.ColX
		m.toast = ""
		return m, m.dispatch(session.DatasetLoaded{Dataset: msg.ds})

	case exportDoneMsg:
		if msg.err != nil {
			m.log.Error("export.failed", "path", msg.path, "err", msg.err)
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.log.Info("export.written", "path", msg.path, "mse", msg.readouts.Loss.MSE)
		m.toast = "Exported " + msg.path
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.log.Error("workspace.init_failed", "root", msg.root, "err", msg.err)
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.workspaceFound = true
		m.workspaceRoot = msg.root
		m.toast = "Workspace initialized"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	switch m.mode {
	case modeEdit:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case modePicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// dispatch runs the reducer and carries out its effects.
func (m *model) dispatch(ev session.Event) tea.Cmd {
	var eff session.Effect
	m.state, eff = session.Reduce(m.state, ev)

	if eff.Redraw {
		m.redraw()
	}
	if eff.Stop {
		m.orch.Stop()
	}
	if eff.Start != nil {
		ch, cmd := startTrainingAsync(m.ctx, m.orch, *eff.Start, m.log)
		m.trainCh = ch
		return cmd
	}
	return nil
}

func (m *model) redraw() {
	m.readouts = render.Render(m.canvas, m.scene(false))
	m.plot = m.canvas.View()
}

func (m model) scene(readouts bool) render.Scene {
	return render.Scene{Points: m.state.Points(), Line: m.state.Line, ShowReadouts: readouts}
}

// sideWidth is the width of the right column including borders.
const sideWidth = 40

func (m *model) resize() {
	cols := m.width - sideWidth - 6
	rows := m.height - 8
	if cols < 20 {
		cols = 20
	}
	if rows < 8 {
		rows = 8
	}
	m.canvas.Resize(cols, rows)
	m.picker.SetSize(max(m.width-8, 20), max(m.height-8, 6))
	m.redraw()
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case modeEdit:
		return m.updateEdit(msg)
	case modePicker:
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.focus = (m.focus + paneCount - 1) % paneCount
		return m, nil

	case key.Matches(msg, m.keys.Train):
		return m, m.dispatch(session.TrainRequested{})

	case key.Matches(msg, m.keys.Stop):
		return m, m.dispatch(session.StopRequested{})

	case key.Matches(msg, m.keys.Reset):
		m.row, m.col = 0, table.ColX
		m.toast = ""
		return m, m.dispatch(session.Reset{})

	case key.Matches(msg, m.keys.Open):
		return m, cmdListDatasets(m.deps, m.workspaceRoot)

	case key.Matches(msg, m.keys.Export):
		path, err := template.ExportPath(m.workspaceRoot, m.deps.Config.Paths, m.state.DatasetName, m.now())
		if err != nil {
			m.toast = userMessage(err)
			return m, nil
		}
		m.toast = "Exporting..."
		return m, cmdExport(path, m.scene(true))

	case key.Matches(msg, m.keys.Init):
		if m.workspaceFound {
			m.toast = "Workspace already at " + m.workspaceRoot
			return m, nil
		}
		return m, cmdInitWorkspaceHere(m.deps, m.workspaceRoot)
	}

	switch m.focus {
	case paneGraph:
		return m.updateGraph(msg)
	case paneTable:
		return m.updateTable(msg)
	case paneTraining:
		return m.updateTraining(msg)
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.state.Training {
		m.orch.Stop()
	}
	return m, tea.Quit
}

func (m model) updateGraph(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slope := func(dir int) session.Event {
		return session.SlopeChanged{Value: step(m.state.SlopeSlider, dir, domain.SlopeSliderMin, domain.SlopeSliderMax)}
	}
	intercept := func(dir int) session.Event {
		return session.InterceptChanged{Value: step(m.state.InterceptSlider, dir, domain.InterceptSliderMin, domain.InterceptSliderMax)}
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		return m, m.dispatch(slope(-1))
	case key.Matches(msg, m.keys.Right):
		return m, m.dispatch(slope(1))
	case key.Matches(msg, m.keys.Up):
		return m, m.dispatch(intercept(1))
	case key.Matches(msg, m.keys.Down):
		return m, m.dispatch(intercept(-1))
	}
	return m, nil
}

// step moves a slider by one notch, snapped to the slider grid and kept
// inside [lo, hi].
func step(v float64, dir int, lo, hi float64) float64 {
	n := math.Round(v/domain.SliderStep) + float64(dir)
	v = math.Round(n*domain.SliderStep*100) / 100
	return math.Max(lo, math.Min(hi, v))
}

func (m model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.row > headerRow {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < m.state.Table.Len()-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		m.col = table.ColX
	case key.Matches(msg, m.keys.Right):
		m.col = table.ColY

	case key.Matches(msg, m.keys.AddRow):
		cmd := m.dispatch(session.RowAdded{})
		m.row = m.state.Table.Len() - 1
		return m, cmd

	case key.Matches(msg, m.keys.DelRow):
		if m.row == headerRow {
			return m, nil
		}
		cmd := m.dispatch(session.RowDeleted{Index: m.row})
		if m.row > m.state.Table.Len()-1 {
			m.row = m.state.Table.Len() - 1
		}
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		if m.row == headerRow {
			return m.beginEdit(m.headerText(m.col))
		}
		return m.beginEdit(m.state.Table.Cell(m.row, m.col))
	}
	return m, nil
}

func (m model) headerText(col table.Column) string {
	if col == table.ColY {
		return m.state.Headers.Y
	}
	return m.state.Headers.X
}

func (m model) updateTraining(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.field = fieldEpochs
	case key.Matches(msg, m.keys.Down):
		m.field = fieldLearningRate
	case key.Matches(msg, m.keys.Edit):
		if m.field == fieldEpochs {
			return m.beginEdit(m.state.EpochsText)
		}
		return m.beginEdit(m.state.LearningRateText)
	}
	return m, nil
}

func (m model) beginEdit(text string) (tea.Model, tea.Cmd) {
	m.editOrig = text
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.mode = modeEdit
	return m, m.input.Focus()
}

// updateEdit applies every keystroke immediately so the graph follows the
// typing; esc puts the original text back.
func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.applyEdit(m.editOrig)
		m.endEdit()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		m.endEdit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyEdit(m.input.Value())
	return m, cmd
}

func (m *model) applyEdit(text string) {
	switch m.focus {
	case paneTable:
		if m.row == headerRow {
			m.dispatch(session.HeaderEdited{Col: m.col, Text: text})
			return
		}
		m.dispatch(session.CellEdited{Row: m.row, Col: m.col, Text: text})
	case paneTraining:
		if m.field == fieldEpochs {
			m.dispatch(session.EpochsEdited{Text: text})
			return
		}
		m.dispatch(session.LearningRateEdited{Text: text})
	}
}

func (m *model) endEdit() {
	m.input.Blur()
	m.editOrig = ""
	m.mode = modeNormal
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
			m.mode = modeNormal
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			it, ok := m.picker.SelectedItem().(datasetItem)
			m.mode = modeNormal
			if !ok {
				return m, nil
			}
			m.toast = fmt.Sprintf("Loading %s...", it.ref.Name)
			return m, cmdLoadDataset(m.deps, it.ref.Path)
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}
