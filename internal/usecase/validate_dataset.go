package usecase

import (
	"context"
	"fmt"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/ports"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
	"github.com/aalvaropc/linefit/internal/usecase/table"
)

// DatasetReport summarizes what a dataset contributes to the plot.
type DatasetReport struct {
	Name    string         `json:"name"`
	Path    string         `json:"path"`
	Headers domain.Headers `json:"headers"`
	Rows    int            `json:"rows"`
	Points  int            `json:"points"`
	Skipped int            `json:"skipped"`
	// Fit is the least-squares line, present when the x values are not all equal.
	Fit *domain.Line `json:"fit,omitempty"`
}

type ValidateDataset struct {
	datasets ports.DatasetLoader
}

func NewValidateDataset(dl ports.DatasetLoader) *ValidateDataset {
	return &ValidateDataset{datasets: dl}
}

// Execute loads a dataset and checks that it holds enough usable rows to
// train on. The report is filled in even when the check fails.
func (uc *ValidateDataset) Execute(ctx context.Context, path string) (DatasetReport, error) {
	if err := ctx.Err(); err != nil {
		return DatasetReport{}, err
	}

	ds, err := uc.datasets.LoadDataset(path)
	if err != nil {
		return DatasetReport{}, err
	}

	t := table.FromRows(ds.Rows)
	points := t.Points()

	rep := DatasetReport{
		Name:    ds.Name,
		Path:    ds.Path,
		Headers: ds.Headers,
		Rows:    t.Len(),
		Points:  len(points),
		Skipped: t.Skipped(),
	}
	if fit, ok := loss.LeastSquares(points); ok {
		rep.Fit = &fit
	}

	if len(points) < 2 {
		return rep, &domain.OpError{
			Op:   "usecase.validate_dataset",
			Kind: domain.KindInsufficientData,
			Path: path,
			Err:  fmt.Errorf("%w: %d usable row(s)", domain.ErrNotEnoughPoints, len(points)),
		}
	}
	return rep, nil
}
