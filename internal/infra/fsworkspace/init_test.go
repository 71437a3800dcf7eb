package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/linefit/internal/infra/config"
	"github.com/aalvaropc/linefit/internal/infra/yamldataset"
	"github.com/aalvaropc/linefit/internal/usecase/table"
)

func TestInitializer_Init_CreatesWorkspaceFiles(t *testing.T) {
	tmp := t.TempDir()

	i := NewInitializer()
	if err := i.Init(tmp, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "linefit.yaml"))
	assertFileExists(t, filepath.Join(tmp, "data", "sample.yaml"))
	assertFileExists(t, filepath.Join(tmp, "exports"))
	assertFileExists(t, filepath.Join(tmp, ".linefit", "logs"))
	assertFileExists(t, filepath.Join(tmp, ".gitignore"))
}

func TestInitializer_Init_TemplatesAreLoadable(t *testing.T) {
	tmp := t.TempDir()
	if err := NewInitializer().Init(tmp, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	cfg, err := config.LoadOrDefault(tmp)
	if err != nil {
		t.Fatalf("config template does not load: %v", err)
	}
	if cfg.Training.Epochs != 100 || cfg.Paths.DataDir != "data" {
		t.Fatalf("cfg=%+v", cfg)
	}

	ds, err := yamldataset.NewLoader().LoadDataset(filepath.Join(tmp, "data", "sample.yaml"))
	if err != nil {
		t.Fatalf("sample dataset does not load: %v", err)
	}
	if n := len(table.FromRows(ds.Rows).Points()); n < 2 {
		t.Fatalf("sample must be trainable, got %d points", n)
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "linefit.yaml")
	if err := os.WriteFile(cfgPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing linefit.yaml: %v", err)
	}

	i := NewInitializer()

	if err := i.Init(tmp, false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read linefit.yaml: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected linefit.yaml preserved, got %q", string(b))
	}

	if err := i.Init(tmp, true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read linefit.yaml after force: %v", err)
	}
	if !strings.Contains(string(b), "linefit:") {
		t.Fatalf("expected linefit.yaml overwritten with template, got %q", string(b))
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
