package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aalvaropc/linefit/internal/app/template"
	"github.com/aalvaropc/linefit/internal/domain"
)

// MapConfig applies the parsed file on top of domain.DefaultConfig.
func MapConfig(path string, y YAMLConfig) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	t := y.Linefit.Training

	if t.Epochs != nil {
		if *t.Epochs <= 0 {
			return cfg, invalidField(path, "linefit.training.epochs", fmt.Sprintf("must be a positive integer, got %d", *t.Epochs))
		}
		cfg.Training.Epochs = *t.Epochs
	}
	if t.LearningRate != nil {
		lr := *t.LearningRate
		if lr <= 0 || math.IsNaN(lr) || math.IsInf(lr, 0) {
			return cfg, invalidField(path, "linefit.training.learning_rate", fmt.Sprintf("must be a positive number, got %v", lr))
		}
		cfg.Training.LearningRate = lr
	}
	if t.BatchSize != nil {
		if *t.BatchSize < 0 {
			return cfg, invalidField(path, "linefit.training.batch_size", "must not be negative (0 means full batch)")
		}
		cfg.Training.BatchSize = *t.BatchSize
	}
	if t.YieldMS != nil {
		if *t.YieldMS < 0 {
			return cfg, invalidField(path, "linefit.training.yield_ms", "must not be negative")
		}
		cfg.Training.Yield = time.Duration(*t.YieldMS) * time.Millisecond
	}

	if d := strings.TrimSpace(y.Linefit.Paths.DataDir); d != "" {
		cfg.Paths.DataDir = d
	}
	if d := strings.TrimSpace(y.Linefit.Paths.ExportsDir); d != "" {
		cfg.Paths.ExportsDir = d
	}
	if n := strings.TrimSpace(y.Linefit.Paths.ExportName); n != "" {
		if err := template.ValidateExportName(n); err != nil {
			return cfg, invalidField(path, "linefit.paths.export_name", err.Error())
		}
		cfg.Paths.ExportName = n
	}

	return cfg, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
