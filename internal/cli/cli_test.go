package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/linefit/internal/domain"
)

// --- looksLikePath ---

func TestLooksLikePath(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"sample", false},
		{"sample.yaml", false},
		{"./sample.yaml", true},
		{"data/sample.yaml", true},
		{"/abs/path/sample.yaml", true},
	}
	for _, c := range cases {
		if got := looksLikePath(c.input); got != c.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- hasYAMLExt ---

func TestHasYAMLExt(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"sample.yaml", true},
		{"sample.yml", true},
		{"SAMPLE.YAML", true},
		{"sample.json", false},
		{"sample", false},
		{"", false},
	}
	for _, c := range cases {
		if got := hasYAMLExt(c.input); got != c.want {
			t.Errorf("hasYAMLExt(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

// --- fileExists ---

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "exists.txt")
	if err := os.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !fileExists(p) {
		t.Errorf("expected fileExists=true for %s", p)
	}
	if fileExists(filepath.Join(tmp, "not_there.txt")) {
		t.Error("expected fileExists=false for non-existent file")
	}
}

// --- exportPath ---

func TestExportPath(t *testing.T) {
	ws := &workspaceCtx{root: "/ws", cfg: domain.DefaultConfig()}
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	got, err := exportPath(ws, "", "study hours", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join("/ws", "exports", "study-hours-20240304-050607.png"); got != want {
		t.Errorf("default export path = %q, want %q", got, want)
	}

	got, err = exportPath(ws, "out/./plot.svg", "x", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join("out", "plot.svg") {
		t.Errorf("explicit export path = %q", got)
	}
}

// --- resolveDatasetPath ---

func newWorkspace(t *testing.T) (string, *workspaceCtx) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "name: Study Hours\nrows:\n  - {x: \"1\", y: \"2\"}\n  - {x: \"2\", y: \"4\"}\n  - {x: \"3\", y: \"6.5\"}\n"
	if err := os.WriteFile(filepath.Join(root, "data", "study.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	ws, err := loadWorkspace(root)
	if err != nil {
		t.Fatalf("loadWorkspace: %v", err)
	}
	return root, ws
}

func TestResolveDatasetPath(t *testing.T) {
	root, ws := newWorkspace(t)
	want := filepath.Join(root, "data", "study.yaml")

	for _, arg := range []string{"study", "study.yaml", "Study Hours", "data/study.yaml", want} {
		got, err := resolveDatasetPath(ws, arg)
		if err != nil {
			t.Fatalf("resolveDatasetPath(%q): %v", arg, err)
		}
		if got != want {
			t.Errorf("resolveDatasetPath(%q) = %q, want %q", arg, got, want)
		}
	}

	if _, err := resolveDatasetPath(ws, ""); err == nil {
		t.Error("expected error for empty dataset")
	}
	if _, err := resolveDatasetPath(ws, "nope"); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestResolveWorkspaceRoot_ExplicitPath(t *testing.T) {
	tmp := t.TempDir()
	got, err := resolveWorkspaceRoot(tmp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tmp {
		t.Errorf("expected %q, got %q", tmp, got)
	}
}

func TestResolveWorkspaceRoot_Autodetect(t *testing.T) {
	got, err := resolveWorkspaceRoot("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}

// --- printTrain ---

func sampleReport() trainReport {
	return trainReport{
		Dataset: "study",
		Points:  3,
		Start:   domain.Line{Slope: 0.5},
		Config:  domain.TrainingConfig{Epochs: 2, LearningRate: 0.1},
		Epochs: []domain.EpochUpdate{
			{Epoch: 1, Epochs: 2, Loss: 0.5, Line: domain.Line{Slope: 1}},
			{Epoch: 2, Epochs: 2, Loss: 0.2, Line: domain.Line{Slope: 1.5}},
		},
		Result: domain.TrainingResult{Outcome: domain.OutcomeCompleted, Line: domain.Line{Slope: 1.5}, EpochsApplied: 2, FinalMSE: 0.2},
	}
}

func TestPrintTrain_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printTrain(&buf, sampleReport(), "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if payload["dataset"] != "study" {
		t.Errorf("expected dataset=study, got %v", payload["dataset"])
	}
	if eps, ok := payload["epochs"].([]any); !ok || len(eps) != 2 {
		t.Errorf("expected 2 epochs, got %v", payload["epochs"])
	}
}

func TestPrintTrain_JSONOmitsNonFiniteValues(t *testing.T) {
	rep := sampleReport()
	rep.Epochs = append(rep.Epochs, domain.EpochUpdate{Epoch: 3, Epochs: 3, Loss: math.Inf(1), Line: domain.Line{Slope: math.NaN()}})
	rep.Result = domain.TrainingResult{Outcome: domain.OutcomeFailed, Line: domain.Line{Slope: math.Inf(-1)}, EpochsApplied: 2, FinalMSE: math.Inf(1)}
	rep.Error = "diverged"

	var buf bytes.Buffer
	if err := printTrain(&buf, rep, "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	result := payload["result"].(map[string]any)
	if _, ok := result["final_mse"]; ok {
		t.Errorf("expected final_mse to be omitted, got %v", result["final_mse"])
	}
	if _, ok := result["line"]; ok {
		t.Errorf("expected line to be omitted, got %v", result["line"])
	}
	if result["outcome"] != "failed" || payload["error"] != "diverged" {
		t.Errorf("unexpected payload %v", payload)
	}
	last := payload["epochs"].([]any)[2].(map[string]any)
	if _, ok := last["loss"]; ok {
		t.Errorf("expected non-finite loss to be omitted, got %v", last)
	}

	buf.Reset()
	if err := printTrain(&buf, rep, "pretty"); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "MSE:       not finite") {
		t.Errorf("expected non-finite MSE marker, got:\n%s", buf.String())
	}
}

func TestPrintTrain_Pretty(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport()
	rep.Error = "boom"
	if err := printTrain(&buf, rep, ""); err != nil {
		t.Fatalf("empty format should behave like pretty, got error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"study", "completed after 2 epoch(s)", "y = 1.50x + 0.00", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestPrintTrain_UnknownFormat(t *testing.T) {
	err := printTrain(&bytes.Buffer{}, trainReport{}, "xml")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected error mentioning format, got %v", err)
	}
}

// --- command structure ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Use] = true
	}
	for _, expected := range []string{"train", "render", "validate", "datasets", "init", "version"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
	for _, flag := range []string{"debug", "workspace"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent --%s flag", flag)
		}
	}
	if cmd.Flags().Lookup("data") == nil {
		t.Error("expected --data flag on root command")
	}
}

func TestTrainCmd_Flags(t *testing.T) {
	cmd := trainCmd()
	for _, flag := range []string{"data", "epochs", "lr", "batch", "slope", "intercept", "format"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on train command", flag)
		}
	}
}

func TestRenderCmd_Flags(t *testing.T) {
	cmd := renderCmd()
	for _, flag := range []string{"data", "out", "slope", "intercept", "fit", "no-readouts"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on render command", flag)
		}
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Flags().Lookup("path") == nil {
		t.Error("expected --path flag on init command")
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
}

// --- end to end ---

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInitThenTrainJSON(t *testing.T) {
	root := t.TempDir()
	if out, err := execute(t, "init", "--path", root); err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}

	out, err := execute(t, "train", "-w", root, "-d", "sample", "--epochs", "5", "--lr", "0.5", "--format", "json")
	if err != nil {
		t.Fatalf("train: %v\n%s", err, out)
	}

	var rep trainReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("bad json: %v\n%s", err, out)
	}
	if rep.Result.Outcome != domain.OutcomeCompleted || rep.Result.EpochsApplied != 5 || len(rep.Epochs) != 5 {
		t.Fatalf("result=%+v epochs=%d", rep.Result, len(rep.Epochs))
	}
	if rep.Config.LearningRate != 0.5 || rep.Reference == nil {
		t.Fatalf("config=%+v reference=%v", rep.Config, rep.Reference)
	}

	if _, err := os.Stat(filepath.Join(root, ".linefit", "logs", "linefit.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestTrain_DivergingRunStillPrintsJSON(t *testing.T) {
	root := t.TempDir()
	if out, err := execute(t, "init", "--path", root); err != nil {
		t.Fatalf("init: %v\n%s", err, out)
	}

	out, err := execute(t, "train", "-w", root, "-d", "sample", "--epochs", "50", "--lr", "1e150", "--format", "json")
	if !domain.IsKind(err, domain.KindTraining) {
		t.Fatalf("expected training error, got %v\n%s", err, out)
	}

	// cobra appends "Error: ..." after the report.
	var rep trainReport
	if err := json.NewDecoder(strings.NewReader(out)).Decode(&rep); err != nil {
		t.Fatalf("bad json: %v\n%s", err, out)
	}
	if rep.Result.Outcome != domain.OutcomeFailed || rep.Result.EpochsApplied >= 50 {
		t.Fatalf("unexpected result %+v", rep.Result)
	}
	if !strings.Contains(rep.Error, "not finite") {
		t.Fatalf("expected divergence error in report, got %q", rep.Error)
	}
}

func TestTrain_RejectsNonFiniteFlags(t *testing.T) {
	_, err := execute(t, "train", "-w", t.TempDir(), "-d", "sample", "--lr", "Inf")
	if err == nil || !strings.Contains(err.Error(), "--lr") {
		t.Fatalf("expected --lr error, got %v", err)
	}
}

func TestTrain_RejectsSinglePoint(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "one.yaml")
	if err := os.WriteFile(p, []byte("rows:\n  - {x: \"1\", y: \"1\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "train", "-w", root, "-d", p)
	if !domain.IsKind(err, domain.KindInsufficientData) {
		t.Fatalf("expected insufficient_data, got %v", err)
	}
	if !strings.Contains(out, "Error: Need at least 2 data points to train") {
		t.Fatalf("expected status line, got:\n%s", out)
	}
}

func TestRenderAndValidate(t *testing.T) {
	root, _ := newWorkspace(t)
	dst := filepath.Join(root, "out", "study.svg")

	out, err := execute(t, "render", "-w", root, "-d", "study", "--fit", "-o", dst)
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	if !fileExists(dst) || !strings.Contains(out, "MSE:") {
		t.Fatalf("render output:\n%s", out)
	}

	out, err = execute(t, "validate", "-w", root, "-d", "study")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3 usable, 0 skipped") || !strings.Contains(out, "OK") {
		t.Fatalf("validate output:\n%s", out)
	}

	out, err = execute(t, "datasets", "list", "-w", root)
	if err != nil || !strings.Contains(out, "Study Hours") {
		t.Fatalf("datasets list: %v\n%s", err, out)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.HasPrefix(out, "linefit ") {
		t.Fatalf("version: %v %q", err, out)
	}
}
