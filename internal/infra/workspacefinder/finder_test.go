package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/linefit/internal/domain"
)

func TestFindRoot_FindsWorkspaceFromNestedDir(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "ws")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "linefit.yaml"), []byte("linefit:\n  training:\n    epochs: 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f := NewFinder()
	got, err := f.FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}

	// a file path resolves through its directory
	file := filepath.Join(nested, "points.yaml")
	if err := os.WriteFile(file, []byte("rows: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := f.FindRoot(file); err != nil || got != root {
		t.Fatalf("from file: got=%s err=%v", got, err)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	tmp := t.TempDir()
	_ = os.MkdirAll(filepath.Join(tmp, "a", "b"), 0o755)

	f := NewFinder()
	_, err := f.FindRoot(filepath.Join(tmp, "a", "b"))
	if err == nil {
		t.Fatalf("expected error")
	}

	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}

func TestFindRoot_EmptyStart(t *testing.T) {
	if _, err := NewFinder().FindRoot(""); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestResolve_FallsBackToStartDir(t *testing.T) {
	tmp := t.TempDir()
	if got := NewFinder().Resolve(tmp); got != tmp {
		t.Fatalf("expected %s, got %s", tmp, got)
	}
}
