// Package sgd is an in-process trainer for a dense 1x1 layer with bias,
// optimized with plain stochastic gradient descent on mean squared error.
package sgd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/aalvaropc/linefit/internal/ports"
)

var (
	ErrNotCompiled = errors.New("sgd: model is not compiled")
	ErrEmptyBatch  = errors.New("sgd: no training samples")
	ErrDiverged    = errors.New("sgd: loss or weights are not finite")
)

// Trainer builds Models.
type Trainer struct{}

func New() *Trainer { return &Trainer{} }

func (Trainer) NewLinearModel() ports.LinearModel { return NewModel() }

var _ ports.Trainer = (*Trainer)(nil)

// Model holds the weights as a 2-vector [kernel, bias] applied to rows [x, 1].
type Model struct {
	mu       sync.Mutex
	w        *mat.VecDense
	lr       float64
	compiled bool

	stop atomic.Bool
}

func NewModel() *Model {
	return &Model{w: mat.NewVecDense(2, nil)}
}

var _ ports.LinearModel = (*Model)(nil)

func (m *Model) SetWeights(kernel, bias float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.w.SetVec(0, kernel)
	m.w.SetVec(1, bias)
}

func (m *Model) Weights() (kernel, bias float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.w.AtVec(0), m.w.AtVec(1)
}

func (m *Model) Compile(opts ports.CompileOptions) error {
	switch strings.ToLower(strings.TrimSpace(opts.Optimizer)) {
	case "", "sgd":
	default:
		return fmt.Errorf("sgd: unsupported optimizer %q", opts.Optimizer)
	}

	switch strings.TrimSpace(opts.Loss) {
	case "", "meanSquaredError", "mse":
	default:
		return fmt.Errorf("sgd: unsupported loss %q", opts.Loss)
	}

	if !(opts.LearningRate > 0) || !isFinite(opts.LearningRate) {
		return fmt.Errorf("sgd: learning rate must be positive, got %v", opts.LearningRate)
	}

	m.mu.Lock()
	m.lr = opts.LearningRate
	m.compiled = true
	m.mu.Unlock()
	m.stop.Store(false)
	return nil
}

func (m *Model) StopTraining() {
	m.stop.Store(true)
}

// Fit runs opts.Epochs epochs over xs/ys in order (no shuffling). The loss
// reported for an epoch is the mean of the per-batch losses measured before
// each update. A stop request is honored after the current epoch's callback;
// one made before Fit starts runs no epochs. Fit returns ErrDiverged as soon
// as the loss or the weights stop being finite, before the epoch is reported.
func (m *Model) Fit(ctx context.Context, xs, ys []float64, opts ports.FitOptions, onEpochEnd ports.EpochFunc) error {
	m.mu.Lock()
	compiled, lr := m.compiled, m.lr
	m.mu.Unlock()

	if !compiled {
		return ErrNotCompiled
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("sgd: xs and ys differ in length (%d != %d)", len(xs), len(ys))
	}
	n := len(xs)
	if n == 0 {
		return ErrEmptyBatch
	}
	if opts.Epochs <= 0 {
		return fmt.Errorf("sgd: epochs must be positive, got %d", opts.Epochs)
	}

	batch := opts.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}

	design := make([]float64, 0, 2*n)
	for _, x := range xs {
		design = append(design, x, 1)
	}
	X := mat.NewDense(n, 2, design)
	y := mat.NewVecDense(n, append([]float64(nil), ys...))

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.stop.Load() {
			return nil
		}

		var total float64
		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			total += m.step(X.Slice(start, end, 0, 2), y.SliceVec(start, end), lr) * float64(end-start)
			if !m.finite() {
				return fmt.Errorf("epoch %d: %w", epoch+1, ErrDiverged)
			}
		}
		epochLoss := total / float64(n)

		if !isFinite(epochLoss) {
			return fmt.Errorf("epoch %d: %w", epoch+1, ErrDiverged)
		}

		if onEpochEnd != nil {
			if err := onEpochEnd(epoch, epochLoss); err != nil {
				return err
			}
		}

		if m.stop.Load() {
			return nil
		}
	}

	return nil
}

func (m *Model) finite() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return isFinite(m.w.AtVec(0)) && isFinite(m.w.AtVec(1))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// step applies one gradient update on a batch and returns the batch MSE
// measured before the update.
func (m *Model) step(X mat.Matrix, y mat.Vector, lr float64) float64 {
	rows, _ := X.Dims()
	size := float64(rows)

	m.mu.Lock()
	defer m.mu.Unlock()

	var pred mat.VecDense
	pred.MulVec(X, m.w)

	var residual mat.VecDense
	residual.SubVec(&pred, y)

	loss := mat.Dot(&residual, &residual) / size

	// d/dw mean((Xw - y)^2) = 2/n X^T (Xw - y)
	var grad mat.VecDense
	grad.MulVec(X.T(), &residual)
	grad.ScaleVec(2/size, &grad)

	m.w.AddScaledVec(m.w, -lr, &grad)
	return loss
}
