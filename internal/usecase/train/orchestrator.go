// Package train runs gradient-descent training of the line through an
// external trainer and streams per-epoch line updates back to an observer.
package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/ports"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
)

const DefaultYield = 10 * time.Millisecond

// Observer receives status text and per-epoch line updates. The observer
// owns the shared line; the orchestrator only reports new values.
type Observer interface {
	OnStatus(s domain.Status)
	OnEpoch(u domain.EpochUpdate)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Status func(domain.Status)
	Epoch  func(domain.EpochUpdate)
}

func (f ObserverFuncs) OnStatus(s domain.Status) {
	if f.Status != nil {
		f.Status(s)
	}
}

func (f ObserverFuncs) OnEpoch(u domain.EpochUpdate) {
	if f.Epoch != nil {
		f.Epoch(u)
	}
}

// Orchestrator allows exactly one run at a time.
type Orchestrator struct {
	trainer ports.Trainer
	log     *slog.Logger
	yield   time.Duration

	mu    sync.Mutex
	state domain.TrainingState
	model ports.LinearModel

	stopRequested atomic.Bool
}

type Option func(*Orchestrator)

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithYield sets the pause after every applied epoch. Zero disables it.
func WithYield(d time.Duration) Option {
	return func(o *Orchestrator) { o.yield = d }
}

func New(tr ports.Trainer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		trainer: tr,
		log:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		yield:   DefaultYield,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() domain.TrainingState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Stop requests cooperative cancellation of the active run. Epochs already
// applied are kept. It reports whether a run was active.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != domain.TrainingActive {
		return false
	}
	o.stopRequested.Store(true)
	if o.model != nil {
		o.model.StopTraining()
	}
	o.log.Info("training.stop_requested")
	return true
}

// Run trains from start and blocks until the run completes, stops or fails.
func (o *Orchestrator) Run(
	ctx context.Context,
	points []domain.Point,
	start domain.Line,
	cfg domain.TrainingConfig,
	obs Observer,
) (domain.TrainingResult, error) {
	if obs == nil {
		obs = ObserverFuncs{}
	}

	rejected := domain.TrainingResult{Outcome: domain.OutcomeRejected, Line: start}

	if !o.begin() {
		err := &domain.OpError{Op: "train.run", Kind: domain.KindBusy, Err: domain.ErrAlreadyTraining}
		rejected.Err = err
		return rejected, err
	}
	defer o.finish()

	if len(points) < 2 {
		obs.OnStatus(domain.ErrorStatus("Error: Need at least 2 data points to train"))
		o.log.Warn("training.rejected", "points", len(points))
		err := &domain.OpError{Op: "train.run", Kind: domain.KindInsufficientData, Err: domain.ErrNotEnoughPoints}
		rejected.Err = err
		return rejected, err
	}

	if cfg.Epochs <= 0 || !(cfg.LearningRate > 0) {
		obs.OnStatus(domain.ErrorStatus("Error: Epochs and learning rate must be positive"))
		o.log.Warn("training.rejected", "epochs", cfg.Epochs, "learning_rate", cfg.LearningRate)
		err := &domain.OpError{
			Op:   "train.run",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("epochs=%d learning_rate=%v: %w", cfg.Epochs, cfg.LearningRate, domain.ErrInvalidConfig),
		}
		rejected.Err = err
		return rejected, err
	}

	o.log.Info("training.start",
		"points", len(points),
		"epochs", cfg.Epochs,
		"learning_rate", cfg.LearningRate,
		"slope", start.Slope,
		"intercept", start.Intercept,
	)
	obs.OnStatus(domain.InfoStatus("Initializing model..."))

	norm := NewNormalizer(points)
	xs, ys := norm.Data(points)

	current := start
	applied := 0

	model := o.trainer.NewLinearModel()
	model.SetWeights(norm.Normalize(start))

	if err := model.Compile(ports.CompileOptions{
		Optimizer:    "sgd",
		LearningRate: cfg.LearningRate,
		Loss:         "meanSquaredError",
	}); err != nil {
		return o.fail(obs, points, current, applied, err)
	}

	o.attach(model)
	obs.OnStatus(domain.InfoStatus(fmt.Sprintf("Starting from m=%.2f, b=%.2f...", start.Slope, start.Intercept)))

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = len(points)
	}

	fitErr := model.Fit(ctx, xs, ys, ports.FitOptions{Epochs: cfg.Epochs, BatchSize: batch}, func(epoch int, l float64) error {
		if o.stopRequested.Load() {
			return nil
		}

		current = norm.Denormalize(model.Weights())
		applied = epoch + 1

		obs.OnEpoch(domain.EpochUpdate{Epoch: applied, Epochs: cfg.Epochs, Loss: l, Line: current})
		obs.OnStatus(domain.InfoStatus(fmt.Sprintf("Epoch %d/%d - Loss: %.4f", applied, cfg.Epochs, l)))
		o.log.Debug("training.epoch", "epoch", applied, "loss", l, "slope", current.Slope, "intercept", current.Intercept)

		return o.pause(ctx)
	})

	stopped := o.stopRequested.Load() || errors.Is(fitErr, context.Canceled)

	if fitErr != nil && !errors.Is(fitErr, context.Canceled) {
		return o.fail(obs, points, current, applied, fitErr)
	}

	if stopped {
		obs.OnStatus(domain.ErrorStatus("Training stopped"))
		o.log.Info("training.done", "outcome", domain.OutcomeStopped, "epochs_applied", applied)
		return domain.TrainingResult{
			Outcome:       domain.OutcomeStopped,
			Line:          current,
			EpochsApplied: applied,
			FinalMSE:      loss.Evaluate(points, current).MSE,
		}, nil
	}

	current = norm.Denormalize(model.Weights())
	mse := loss.Evaluate(points, current).MSE

	obs.OnStatus(domain.SuccessStatus(fmt.Sprintf("Training complete! Final loss: %.4f", mse)))
	o.log.Info("training.done",
		"outcome", domain.OutcomeCompleted,
		"epochs_applied", applied,
		"slope", current.Slope,
		"intercept", current.Intercept,
		"mse", mse,
	)

	return domain.TrainingResult{
		Outcome:       domain.OutcomeCompleted,
		Line:          current,
		EpochsApplied: applied,
		FinalMSE:      mse,
	}, nil
}

func (o *Orchestrator) fail(obs Observer, points []domain.Point, current domain.Line, applied int, cause error) (domain.TrainingResult, error) {
	obs.OnStatus(domain.ErrorStatus("Error: " + cause.Error()))
	o.log.Error("training.failed", "err", cause, "epochs_applied", applied)

	err := &domain.OpError{Op: "train.run", Kind: domain.KindTraining, Err: cause}
	return domain.TrainingResult{
		Outcome:       domain.OutcomeFailed,
		Line:          current,
		EpochsApplied: applied,
		FinalMSE:      loss.Evaluate(points, current).MSE,
		Err:           err,
	}, err
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == domain.TrainingActive {
		return false
	}
	o.state = domain.TrainingActive
	o.model = nil
	o.stopRequested.Store(false)
	return true
}

func (o *Orchestrator) attach(m ports.LinearModel) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.model = m
	if o.stopRequested.Load() {
		m.StopTraining()
	}
}

func (o *Orchestrator) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = domain.TrainingIdle
	o.model = nil
}

// pause yields between epochs so the UI can repaint.
func (o *Orchestrator) pause(ctx context.Context) error {
	if o.yield <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(o.yield)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
