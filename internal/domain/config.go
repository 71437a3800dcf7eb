package domain

import "time"

// Config represents the linefit configuration loaded from linefit.yaml.
type Config struct {
	Training TrainingDefaults
	Paths    PathsConfig
}

type TrainingDefaults struct {
	Epochs       int
	LearningRate float64
	BatchSize    int
	Yield        time.Duration
}

type PathsConfig struct {
	DataDir    string
	ExportsDir string
	// ExportName is the file name pattern of exported plots; see
	// app/template for the placeholders.
	ExportName string
}

// DefaultConfig provides sane defaults if linefit.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Training: TrainingDefaults{
			Epochs:       100,
			LearningRate: 0.1,
			Yield:        10 * time.Millisecond,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ExportsDir: "exports",
			ExportName: "{{dataset}}-{{timestamp}}",
		},
	}
}

// TrainingConfig returns the run configuration implied by the defaults.
func (c Config) TrainingConfig() TrainingConfig {
	return TrainingConfig{
		Epochs:       c.Training.Epochs,
		LearningRate: c.Training.LearningRate,
		BatchSize:    c.Training.BatchSize,
	}
}
