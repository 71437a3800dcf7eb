package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/workspacefinder"
	"github.com/aalvaropc/linefit/internal/infra/yamldataset"
	"github.com/aalvaropc/linefit/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	datasets ports.DatasetLoader
}

// loadWorkspace resolves the workspace root and its config. linefit runs
// without a workspace too: the working directory then acts as root and the
// defaults apply.
func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	start, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	root, cfg, err := workspacefinder.LoadConfig(start)
	if err != nil {
		return nil, err
	}

	return &workspaceCtx{
		root:     root,
		cfg:      cfg,
		datasets: yamldataset.NewLoader(yamldataset.WithDataDir(cfg.Paths.DataDir)),
	}, nil
}

// workspaceFlag reads the root's persistent --workspace flag.
func workspaceFlag(cmd *cobra.Command) string {
	w, _ := cmd.Flags().GetString("workspace")
	return w
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return workspacefinder.NewFinder().Resolve(wd), nil
}

// resolveDatasetPath accepts a path, a file name under the data dir, a file
// stem, or a dataset's "name" field.
func resolveDatasetPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("dataset is required (use --data or -d)")
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			wd, err := os.Getwd()
			if err == nil && fileExists(filepath.Join(wd, p)) {
				return filepath.Clean(filepath.Join(wd, p)), nil
			}
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	dataDir := ws.cfg.Paths.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(ws.root, dataDir)
	}

	if hasYAMLExt(in) {
		if fileExists(in) {
			abs, _ := filepath.Abs(in)
			return abs, nil
		}
		p := filepath.Join(dataDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	p1 := filepath.Join(dataDir, in+".yaml")
	if fileExists(p1) {
		return p1, nil
	}
	p2 := filepath.Join(dataDir, in+".yml")
	if fileExists(p2) {
		return p2, nil
	}

	refs, err := ws.datasets.ListDatasets(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", &domain.OpError{
		Op:   "cli.resolve_dataset",
		Kind: domain.KindNotFound,
		Path: dataDir,
		Err:  fmt.Errorf("dataset %q: %w", in, domain.ErrNotFound),
	}
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
