package train

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/sgd"
	"github.com/aalvaropc/linefit/internal/ports"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
)

// scriptedModel reports a fixed weight pair per epoch and ignores stop
// requests unless honorStop is set.
type scriptedModel struct {
	kernel, bias float64
	initK, initB float64

	epochs    int
	failAfter int
	failErr   error
	honorStop bool
	block     chan struct{}

	compileErr error
	stopped    bool
	mu         sync.Mutex
}

func (m *scriptedModel) SetWeights(k, b float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kernel, m.bias = k, b
	m.initK, m.initB = k, b
}

func (m *scriptedModel) Weights() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kernel, m.bias
}

func (m *scriptedModel) Compile(ports.CompileOptions) error { return m.compileErr }

func (m *scriptedModel) StopTraining() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *scriptedModel) Fit(ctx context.Context, _, _ []float64, opts ports.FitOptions, cb ports.EpochFunc) error {
	if m.block != nil {
		<-m.block
	}
	for e := 0; e < opts.Epochs; e++ {
		if m.failAfter > 0 && e == m.failAfter {
			return m.failErr
		}
		m.mu.Lock()
		m.kernel = float64(e + 1)
		m.bias = float64(-(e + 1))
		m.mu.Unlock()

		if err := cb(e, 1/float64(e+1)); err != nil {
			return err
		}

		m.mu.Lock()
		stop := m.stopped && m.honorStop
		m.mu.Unlock()
		if stop {
			return nil
		}
	}
	return nil
}

type fakeTrainer struct{ model *scriptedModel }

func (f fakeTrainer) NewLinearModel() ports.LinearModel { return f.model }

var _ ports.Trainer = fakeTrainer{}
var _ ports.LinearModel = (*scriptedModel)(nil)

type recorder struct {
	mu       sync.Mutex
	statuses []domain.Status
	epochs   []domain.EpochUpdate
	onEpoch  func(domain.EpochUpdate)
}

func (r *recorder) OnStatus(s domain.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) OnEpoch(u domain.EpochUpdate) {
	r.mu.Lock()
	r.epochs = append(r.epochs, u)
	hook := r.onEpoch
	r.mu.Unlock()
	if hook != nil {
		hook(u)
	}
}

func (r *recorder) last() domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return domain.Status{}
	}
	return r.statuses[len(r.statuses)-1]
}

var twoPoints = []domain.Point{{X: 0, Y: 0}, {X: 2, Y: 4}}

func TestRunRejectsSinglePoint(t *testing.T) {
	o := New(fakeTrainer{model: &scriptedModel{}}, WithYield(0))
	rec := &recorder{}
	start := domain.Line{Slope: 0.5, Intercept: 1}

	res, err := o.Run(context.Background(), []domain.Point{{X: 1, Y: 1}}, start, domain.TrainingConfig{Epochs: 10, LearningRate: 0.1}, rec)
	if !errors.Is(err, domain.ErrNotEnoughPoints) {
		t.Fatalf("expected ErrNotEnoughPoints, got %v", err)
	}
	if !domain.IsKind(err, domain.KindInsufficientData) {
		t.Fatalf("expected insufficient_data kind")
	}
	if res.Outcome != domain.OutcomeRejected || res.Line != start {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(rec.epochs) != 0 {
		t.Fatalf("expected no epoch updates")
	}
	st := rec.last()
	if st.Tone != domain.ToneError || !strings.Contains(st.Text, "at least 2 data points") {
		t.Fatalf("unexpected status %+v", st)
	}
	if o.State() != domain.TrainingIdle {
		t.Fatalf("expected idle")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	o := New(fakeTrainer{model: &scriptedModel{}}, WithYield(0))

	for _, cfg := range []domain.TrainingConfig{{Epochs: 0, LearningRate: 0.1}, {Epochs: 5, LearningRate: 0}, {Epochs: 5, LearningRate: math.NaN()}} {
		_, err := o.Run(context.Background(), twoPoints, domain.Line{}, cfg, nil)
		if !domain.IsKind(err, domain.KindInvalidConfig) {
			t.Fatalf("cfg %+v: expected invalid_config, got %v", cfg, err)
		}
	}
}

func TestRunCompletesAndAppliesEveryEpoch(t *testing.T) {
	o := New(fakeTrainer{model: &scriptedModel{}}, WithYield(0))
	rec := &recorder{}

	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 4, LearningRate: 0.1}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != domain.OutcomeCompleted || res.EpochsApplied != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(rec.epochs) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(rec.epochs))
	}

	// twoPoints normalizes with xRange=2, yRange=4, mins 0: m = k*2, b = bias*4
	last := rec.epochs[3]
	if last.Epoch != 4 || last.Epochs != 4 || last.Line.Slope != 8 || last.Line.Intercept != -16 {
		t.Fatalf("unexpected last update %+v", last)
	}
	if res.Line != last.Line {
		t.Fatalf("expected final line %+v, got %+v", last.Line, res.Line)
	}
	if want := loss.Evaluate(twoPoints, res.Line).MSE; res.FinalMSE != want {
		t.Fatalf("final mse %v, want %v", res.FinalMSE, want)
	}

	st := rec.last()
	if st.Tone != domain.ToneSuccess || !strings.HasPrefix(st.Text, "Training complete! Final loss: ") {
		t.Fatalf("unexpected status %+v", st)
	}

	texts := make([]string, 0, len(rec.statuses))
	for _, s := range rec.statuses {
		texts = append(texts, s.Text)
	}
	joined := strings.Join(texts, "\n")
	for _, want := range []string{"Initializing model...", "Starting from m=0.00, b=0.00...", "Epoch 1/4 - Loss: 1.0000", "Epoch 4/4 - Loss: 0.2500"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing status %q in:\n%s", want, joined)
		}
	}
	if o.State() != domain.TrainingIdle {
		t.Fatalf("expected idle after completion")
	}
}

func TestRunSeedsModelWithNormalizedStartLine(t *testing.T) {
	m := &scriptedModel{}
	o := New(fakeTrainer{model: m}, WithYield(0))
	start := domain.Line{Slope: 2, Intercept: 0}

	_, _ = o.Run(context.Background(), twoPoints, start, domain.TrainingConfig{Epochs: 1, LearningRate: 0.1}, nil)

	// y = 2x passes through both points, so in normalized space it is y' = x'
	if m.initK != 1 || m.initB != 0 {
		t.Fatalf("expected initial weights (1,0), got (%v,%v)", m.initK, m.initB)
	}
}

func TestStopAfterThirdEpochKeepsThirdEpochLine(t *testing.T) {
	m := &scriptedModel{}
	o := New(fakeTrainer{model: m}, WithYield(0))
	rec := &recorder{}
	rec.onEpoch = func(u domain.EpochUpdate) {
		if u.Epoch == 3 {
			o.Stop()
		}
	}

	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 10, LearningRate: 0.1}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != domain.OutcomeStopped {
		t.Fatalf("expected stopped, got %s", res.Outcome)
	}
	if len(rec.epochs) != 3 {
		t.Fatalf("expected only 3 applied epochs, got %d", len(rec.epochs))
	}
	want := domain.Line{Slope: 6, Intercept: -12}
	if res.Line != want || res.EpochsApplied != 3 {
		t.Fatalf("expected epoch-3 line %+v, got %+v (applied %d)", want, res.Line, res.EpochsApplied)
	}
	if !m.stopped {
		t.Fatalf("expected model StopTraining to be called")
	}
	if st := rec.last(); st.Text != "Training stopped" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestStopWithRealTrainerEndsEarly(t *testing.T) {
	o := New(sgd.New(), WithYield(0))
	rec := &recorder{}
	rec.onEpoch = func(u domain.EpochUpdate) {
		if u.Epoch == 3 {
			o.Stop()
		}
	}

	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 10, LearningRate: 0.1}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != domain.OutcomeStopped || res.EpochsApplied != 3 || len(rec.epochs) != 3 {
		t.Fatalf("unexpected result %+v with %d updates", res, len(rec.epochs))
	}
	if res.Line != rec.epochs[2].Line {
		t.Fatalf("expected last applied line to be kept")
	}
}

func TestDivergenceFailsWithFiniteEpochLines(t *testing.T) {
	o := New(sgd.New(), WithYield(0))
	rec := &recorder{}

	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 50, LearningRate: 1e150}, rec)
	if !errors.Is(err, sgd.ErrDiverged) || !domain.IsKind(err, domain.KindTraining) {
		t.Fatalf("expected diverged training error, got %v", err)
	}
	if res.Outcome != domain.OutcomeFailed || res.EpochsApplied >= 50 {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, u := range rec.epochs {
		if math.IsInf(u.Line.Slope, 0) || math.IsNaN(u.Line.Slope) || math.IsInf(u.Loss, 0) {
			t.Fatalf("epoch %d reported a non-finite update %+v", u.Epoch, u)
		}
	}
}

func TestTrainerErrorKeepsLastAppliedLine(t *testing.T) {
	boom := errors.New("boom")
	o := New(fakeTrainer{model: &scriptedModel{failAfter: 2, failErr: boom}}, WithYield(0))
	rec := &recorder{}

	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 10, LearningRate: 0.1}, rec)
	if !errors.Is(err, boom) || !domain.IsKind(err, domain.KindTraining) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if res.Outcome != domain.OutcomeFailed || res.EpochsApplied != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Line != (domain.Line{Slope: 4, Intercept: -8}) {
		t.Fatalf("expected epoch-2 line, got %+v", res.Line)
	}
	if st := rec.last(); st.Text != "Error: boom" || st.Tone != domain.ToneError {
		t.Fatalf("unexpected status %+v", st)
	}
	if o.State() != domain.TrainingIdle {
		t.Fatalf("expected idle after failure")
	}
}

func TestCompileErrorFails(t *testing.T) {
	o := New(fakeTrainer{model: &scriptedModel{compileErr: errors.New("bad optimizer")}}, WithYield(0))
	start := domain.Line{Slope: 1}

	res, err := o.Run(context.Background(), twoPoints, start, domain.TrainingConfig{Epochs: 3, LearningRate: 0.1}, nil)
	if err == nil || res.Outcome != domain.OutcomeFailed || res.Line != start {
		t.Fatalf("expected failed run with unchanged line, got %+v %v", res, err)
	}
}

func TestRunIsNotReentrant(t *testing.T) {
	m := &scriptedModel{block: make(chan struct{})}
	o := New(fakeTrainer{model: m}, WithYield(0))

	started := make(chan struct{})
	rec := &recorder{}
	first := ObserverFuncs{Status: func(s domain.Status) {
		rec.OnStatus(s)
		if strings.HasPrefix(s.Text, "Starting from") {
			close(started)
		}
	}}

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 2, LearningRate: 0.1}, first)
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run did not start")
	}

	if o.State() != domain.TrainingActive {
		t.Fatalf("expected active state")
	}

	second := &recorder{}
	res, err := o.Run(context.Background(), twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 2, LearningRate: 0.1}, second)
	if !errors.Is(err, domain.ErrAlreadyTraining) || res.Outcome != domain.OutcomeRejected {
		t.Fatalf("expected busy rejection, got %+v %v", res, err)
	}
	if len(second.statuses) != 0 || len(second.epochs) != 0 {
		t.Fatalf("rejected run must not report anything")
	}

	close(m.block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if o.Stop() {
		t.Fatalf("Stop must report false when idle")
	}
}

func TestContextCancelIsReportedAsStopped(t *testing.T) {
	o := New(fakeTrainer{model: &scriptedModel{}}, WithYield(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	rec.onEpoch = func(u domain.EpochUpdate) {
		if u.Epoch == 1 {
			cancel()
		}
	}

	res, err := o.Run(ctx, twoPoints, domain.Line{}, domain.TrainingConfig{Epochs: 5, LearningRate: 0.1}, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != domain.OutcomeStopped || res.EpochsApplied != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRealTrainerConvergesTowardLeastSquares(t *testing.T) {
	points := []domain.Point{{X: -4, Y: -6.5}, {X: -1, Y: -1.2}, {X: 2, Y: 5.1}, {X: 5, Y: 10.8}, {X: 7, Y: 15.2}}
	want, ok := loss.LeastSquares(points)
	if !ok {
		t.Fatalf("expected reference fit")
	}

	o := New(sgd.New(), WithYield(0))
	res, err := o.Run(context.Background(), points, domain.Line{}, domain.TrainingConfig{Epochs: 3000, LearningRate: 0.5}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Line.Slope-want.Slope) > 1e-4 || math.Abs(res.Line.Intercept-want.Intercept) > 1e-4 {
		t.Fatalf("trained %+v, least squares %+v", res.Line, want)
	}
}
