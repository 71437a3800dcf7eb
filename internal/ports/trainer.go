package ports

import "context"

// EpochFunc is called after every epoch with the zero-based epoch index and
// the epoch's mean loss. A non-nil error aborts the fit.
type EpochFunc func(epoch int, loss float64) error

type CompileOptions struct {
	Optimizer    string // "sgd"
	LearningRate float64
	Loss         string // "meanSquaredError"
}

type FitOptions struct {
	Epochs    int
	BatchSize int
}

// LinearModel is a single-input, single-output dense layer with a bias term.
type LinearModel interface {
	SetWeights(kernel, bias float64)
	Weights() (kernel, bias float64)
	Compile(opts CompileOptions) error
	Fit(ctx context.Context, xs, ys []float64, opts FitOptions, onEpochEnd EpochFunc) error
	// StopTraining asks a running Fit to return after the current epoch.
	StopTraining()
}

// Trainer builds fresh models; one model is used per training run.
type Trainer interface {
	NewLinearModel() LinearModel
}
