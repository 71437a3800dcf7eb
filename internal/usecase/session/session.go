// Package session holds the interactive application state and the reducer
// that maps user and training events onto it.
//
// Reduce is pure: it never mutates its input and never performs I/O. Work
// that must happen outside the reducer (starting or stopping a training run,
// repainting) is returned as an Effect for the caller to carry out.
package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
	"github.com/aalvaropc/linefit/internal/usecase/table"
)

type State struct {
	Table   table.Table
	Headers domain.Headers
	Line    domain.Line

	// Slider positions follow the line but stay inside the widget range.
	SlopeSlider     float64
	InterceptSlider float64

	EpochsText       string
	LearningRateText string
	BatchSize        int

	DatasetName string

	Training bool
	// Stopping is set once a stop was requested for the active run; epoch
	// updates still in flight are dropped from then on.
	Stopping bool
	Status   domain.Status
}

// NewState returns the initial state: one empty row, default headers, the
// flat line through the origin and the configured training inputs.
func NewState(cfg domain.TrainingConfig) State {
	return State{
		Table:            table.New(),
		Headers:          domain.DefaultHeaders(),
		EpochsText:       strconv.Itoa(cfg.Epochs),
		LearningRateText: strconv.FormatFloat(cfg.LearningRate, 'g', -1, 64),
		BatchSize:        cfg.BatchSize,
	}
}

// Points rebuilds the point list from the table on every call.
func (s State) Points() []domain.Point {
	return s.Table.Points()
}

func (s State) Loss() domain.Loss {
	return loss.Evaluate(s.Points(), s.Line)
}

// StartRequest is everything a training run needs, captured at request time.
type StartRequest struct {
	Points []domain.Point
	Line   domain.Line
	Config domain.TrainingConfig
}

type Effect struct {
	Redraw bool
	Start  *StartRequest
	Stop   bool
}

type Event interface{ event() }

type (
	SlopeChanged     struct{ Value float64 }
	InterceptChanged struct{ Value float64 }
	Reset            struct{}
	RowAdded         struct{}
	RowDeleted       struct{ Index int }
	CellEdited       struct {
		Row  int
		Col  table.Column
		Text string
	}
	HeaderEdited struct {
		Col  table.Column
		Text string
	}
	EpochsEdited       struct{ Text string }
	LearningRateEdited struct{ Text string }
	DatasetLoaded      struct{ Dataset domain.Dataset }
	TrainRequested     struct{}
	StopRequested      struct{}
	TrainingStatus     struct{ Status domain.Status }
	TrainingEpoch      struct{ Update domain.EpochUpdate }
	TrainingFinished   struct{ Result domain.TrainingResult }
)

func (SlopeChanged) event()       {}
func (InterceptChanged) event()   {}
func (Reset) event()              {}
func (RowAdded) event()           {}
func (RowDeleted) event()         {}
func (CellEdited) event()         {}
func (HeaderEdited) event()       {}
func (EpochsEdited) event()       {}
func (LearningRateEdited) event() {}
func (DatasetLoaded) event()      {}
func (TrainRequested) event()     {}
func (StopRequested) event()      {}
func (TrainingStatus) event()     {}
func (TrainingEpoch) event()      {}
func (TrainingFinished) event()   {}

var redraw = Effect{Redraw: true}

// Reduce applies one event and returns the next state.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case SlopeChanged:
		s = s.withLine(domain.Line{Slope: e.Value, Intercept: s.Line.Intercept})
		return s, redraw

	case InterceptChanged:
		s = s.withLine(domain.Line{Slope: s.Line.Slope, Intercept: e.Value})
		return s, redraw

	case Reset:
		s.Table = table.New()
		s.Headers = domain.DefaultHeaders()
		s.DatasetName = ""
		s = s.withLine(domain.Line{})
		eff := redraw
		if s.Training && !s.Stopping {
			s.Stopping = true
			eff.Stop = true
		}
		return s, eff

	case RowAdded:
		s.Table = s.Table.AddRow()
		return s, redraw

	case RowDeleted:
		s.Table = s.Table.DeleteRow(e.Index)
		return s, redraw

	case CellEdited:
		s.Table = s.Table.SetCell(e.Row, e.Col, e.Text)
		return s, redraw

	case HeaderEdited:
		if e.Col == table.ColY {
			s.Headers.Y = e.Text
		} else {
			s.Headers.X = e.Text
		}
		return s, redraw

	case EpochsEdited:
		s.EpochsText = e.Text
		return s, Effect{}

	case LearningRateEdited:
		s.LearningRateText = e.Text
		return s, Effect{}

	case DatasetLoaded:
		d := e.Dataset
		s.Table = table.FromRows(d.Rows)
		if s.Table.Len() == 0 {
			s.Table = table.New()
		}
		s.Headers = d.Headers.Display()
		s.DatasetName = d.Name
		s.Status = domain.InfoStatus(fmt.Sprintf("Loaded %s (%d points)", d.Name, len(s.Points())))
		return s, redraw

	case TrainRequested:
		return s.requestTraining()

	case StopRequested:
		if !s.Training || s.Stopping {
			return s, Effect{}
		}
		s.Stopping = true
		return s, Effect{Stop: true}

	case TrainingStatus:
		s.Status = e.Status
		return s, Effect{}

	case TrainingEpoch:
		if !s.Training || s.Stopping {
			return s, Effect{}
		}
		s = s.withLine(e.Update.Line)
		return s, redraw

	case TrainingFinished:
		wasStopping := s.Stopping
		s.Training = false
		s.Stopping = false
		if e.Result.Outcome == domain.OutcomeCompleted && !wasStopping {
			s = s.withLine(e.Result.Line)
		}
		return s, redraw
	}

	return s, Effect{}
}

func (s State) requestTraining() (State, Effect) {
	if s.Training {
		return s, Effect{}
	}

	points := s.Points()
	if len(points) < 2 {
		s.Status = domain.ErrorStatus("Error: Need at least 2 data points to train")
		return s, Effect{}
	}

	cfg, err := s.trainingConfig()
	if err != nil {
		s.Status = domain.ErrorStatus("Error: " + err.Error())
		return s, Effect{}
	}

	s.Training = true
	s.Stopping = false
	return s, Effect{Start: &StartRequest{Points: points, Line: s.Line, Config: cfg}}
}

// trainingConfig validates the epoch and learning rate inputs by parsing
// them; no further range limits apply.
func (s State) trainingConfig() (domain.TrainingConfig, error) {
	epochs, err := strconv.Atoi(strings.TrimSpace(s.EpochsText))
	if err != nil || epochs <= 0 {
		return domain.TrainingConfig{}, fmt.Errorf("epochs must be a positive integer, got %q", s.EpochsText)
	}
	lr, err := strconv.ParseFloat(strings.TrimSpace(s.LearningRateText), 64)
	if err != nil || lr <= 0 || math.IsInf(lr, 0) || math.IsNaN(lr) {
		return domain.TrainingConfig{}, fmt.Errorf("learning rate must be a positive number, got %q", s.LearningRateText)
	}
	return domain.TrainingConfig{Epochs: epochs, LearningRate: lr, BatchSize: s.BatchSize}, nil
}

func (s State) withLine(l domain.Line) State {
	s.Line = l
	s.SlopeSlider = clamp(l.Slope, domain.SlopeSliderMin, domain.SlopeSliderMax)
	s.InterceptSlider = clamp(l.Intercept, domain.InterceptSliderMin, domain.InterceptSliderMax)
	return s
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
