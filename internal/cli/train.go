package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/logger"
	"github.com/aalvaropc/linefit/internal/infra/sgd"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
	"github.com/aalvaropc/linefit/internal/usecase/table"
	"github.com/aalvaropc/linefit/internal/usecase/train"
)

// trainReport is what `linefit train` prints.
type trainReport struct {
	Dataset string                `json:"dataset"`
	Points  int                   `json:"points"`
	Skipped int                   `json:"skipped"`
	Start   domain.Line           `json:"start"`
	Config  domain.TrainingConfig `json:"config"`
	Epochs  []domain.EpochUpdate  `json:"epochs,omitempty"`
	Result  domain.TrainingResult `json:"result"`
	Error   string                `json:"error,omitempty"`
	// Reference is the closed-form least-squares line for comparison.
	Reference    *domain.Line `json:"reference,omitempty"`
	ReferenceMSE float64      `json:"reference_mse,omitempty"`
}

// jsonReport is trainReport with every float that may overflow during a
// diverging run turned into an optional field, since encoding/json rejects
// NaN and Inf.
type jsonReport struct {
	Dataset      string                `json:"dataset"`
	Points       int                   `json:"points"`
	Skipped      int                   `json:"skipped"`
	Start        domain.Line           `json:"start"`
	Config       domain.TrainingConfig `json:"config"`
	Epochs       []jsonEpoch           `json:"epochs,omitempty"`
	Result       jsonResult            `json:"result"`
	Error        string                `json:"error,omitempty"`
	Reference    *domain.Line          `json:"reference,omitempty"`
	ReferenceMSE *float64              `json:"reference_mse,omitempty"`
}

type jsonEpoch struct {
	Epoch  int          `json:"epoch"`
	Epochs int          `json:"epochs"`
	Loss   *float64     `json:"loss,omitempty"`
	Line   *domain.Line `json:"line,omitempty"`
}

type jsonResult struct {
	Outcome       domain.TrainingOutcome `json:"outcome"`
	Line          *domain.Line           `json:"line,omitempty"`
	EpochsApplied int                    `json:"epochs_applied"`
	FinalMSE      *float64               `json:"final_mse,omitempty"`
}

func (rep trainReport) toJSON() jsonReport {
	out := jsonReport{
		Dataset: rep.Dataset,
		Points:  rep.Points,
		Skipped: rep.Skipped,
		Start:   rep.Start,
		Config:  rep.Config,
		Result: jsonResult{
			Outcome:       rep.Result.Outcome,
			Line:          finiteLine(rep.Result.Line),
			EpochsApplied: rep.Result.EpochsApplied,
			FinalMSE:      finiteFloat(rep.Result.FinalMSE),
		},
		Error: rep.Error,
	}
	for _, u := range rep.Epochs {
		out.Epochs = append(out.Epochs, jsonEpoch{Epoch: u.Epoch, Epochs: u.Epochs, Loss: finiteFloat(u.Loss), Line: finiteLine(u.Line)})
	}
	if rep.Reference != nil {
		out.Reference = finiteLine(*rep.Reference)
		out.ReferenceMSE = finiteFloat(rep.ReferenceMSE)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteFloat(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func finiteLine(l domain.Line) *domain.Line {
	if !isFinite(l.Slope) || !isFinite(l.Intercept) {
		return nil
	}
	return &l
}

func trainCmd() *cobra.Command {
	var data string
	var epochs int
	var lr float64
	var batch int
	var slope, intercept float64
	var format string

	c := &cobra.Command{
		Use:   "train",
		Short: "Train the line on a dataset with gradient descent (headless)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "pretty" && format != "json" && format != "" {
				return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
			}

			for name, v := range map[string]float64{"lr": lr, "slope": slope, "intercept": intercept} {
				if !isFinite(v) {
					return fmt.Errorf("--%s must be a finite number, got %v", name, v)
				}
			}

			ws, err := loadWorkspace(workspaceFlag(cmd))
			if err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			cleanup, _ := logger.Setup(logger.Config{Root: ws.root, Debug: debug})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			path, err := resolveDatasetPath(ws, data)
			if err != nil {
				return err
			}
			ds, err := ws.datasets.LoadDataset(path)
			if err != nil {
				return err
			}
			logger.L().Info("dataset.loaded", "name", ds.Name, "path", ds.Path, "rows", len(ds.Rows))

			cfg := ws.cfg.TrainingConfig()
			if cmd.Flags().Changed("epochs") {
				cfg.Epochs = epochs
			}
			if cmd.Flags().Changed("lr") {
				cfg.LearningRate = lr
			}
			if cmd.Flags().Changed("batch") {
				cfg.BatchSize = batch
			}

			t := table.FromRows(ds.Rows)
			points := t.Points()
			rep := trainReport{
				Dataset: ds.Name,
				Points:  len(points),
				Skipped: t.Skipped(),
				Start:   domain.Line{Slope: slope, Intercept: intercept},
				Config:  cfg,
			}
			if ref, ok := loss.LeastSquares(points); ok {
				rep.Reference = &ref
				rep.ReferenceMSE = loss.Evaluate(points, ref).MSE
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			res, runErr := runTraining(ctx, train.New(sgd.New(), train.WithLogger(logger.Component("train")), train.WithYield(0)), points, &rep, out, format)
			rep.Result = res
			if runErr != nil {
				rep.Error = runErr.Error()
			}

			if err := printTrain(out, rep, format); err != nil {
				return err
			}
			return runErr
		},
	}

	c.Flags().StringVarP(&data, "data", "d", "", "Dataset name or path (required)")
	c.Flags().IntVar(&epochs, "epochs", 0, "Number of epochs (default from linefit.yaml)")
	c.Flags().Float64Var(&lr, "lr", 0, "Learning rate (default from linefit.yaml)")
	c.Flags().IntVar(&batch, "batch", 0, "Mini-batch size, 0 for full batch (default from linefit.yaml)")
	c.Flags().Float64Var(&slope, "slope", 0, "Starting slope")
	c.Flags().Float64Var(&intercept, "intercept", 0, "Starting intercept")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("data")
	return c
}

// runTraining runs one orchestrator pass, streaming status lines in pretty
// mode and collecting epochs into rep.
func runTraining(ctx context.Context, o *train.Orchestrator, points []domain.Point, rep *trainReport, out io.Writer, format string) (domain.TrainingResult, error) {
	obs := train.ObserverFuncs{
		Epoch: func(u domain.EpochUpdate) {
			rep.Epochs = append(rep.Epochs, u)
		},
		Status: func(s domain.Status) {
			if format != "json" {
				fmt.Fprintln(out, s.Text)
			}
		},
	}
	return o.Run(ctx, points, rep.Start, rep.Config, obs)
}

func printTrain(w io.Writer, rep trainReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.toJSON())
	case "pretty", "":
		printPrettyTrain(w, rep)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printPrettyTrain(w io.Writer, rep trainReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Dataset:   %s\n", rep.Dataset)
	fmt.Fprintf(w, "Points:    %d (%d row(s) skipped)\n", rep.Points, rep.Skipped)
	fmt.Fprintf(w, "Start:     %s\n", rep.Start.Equation())
	fmt.Fprintf(w, "Config:    epochs=%d lr=%g batch=%d\n", rep.Config.Epochs, rep.Config.LearningRate, rep.Config.BatchSize)
	fmt.Fprintf(w, "Outcome:   %s after %d epoch(s)\n", rep.Result.Outcome, rep.Result.EpochsApplied)
	if finiteLine(rep.Result.Line) != nil {
		fmt.Fprintf(w, "Line:      %s\n", rep.Result.Line.Equation())
	} else {
		fmt.Fprintln(w, "Line:      not finite")
	}
	if isFinite(rep.Result.FinalMSE) {
		fmt.Fprintf(w, "MSE:       %.4f\n", rep.Result.FinalMSE)
	} else {
		fmt.Fprintln(w, "MSE:       not finite")
	}
	if rep.Reference != nil {
		fmt.Fprintf(w, "Reference: %s (least squares, MSE %.4f)\n", rep.Reference.Equation(), rep.ReferenceMSE)
	}
	if rep.Error != "" {
		fmt.Fprintf(w, "Error:     %s\n", rep.Error)
	}
}
