package yamldataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	dataDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{dataDir: "data"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithDataDir(dir string) Option {
	return func(l *Loader) {
		if strings.TrimSpace(dir) != "" {
			l.dataDir = dir
		}
	}
}

var _ ports.DatasetLoader = (*Loader)(nil)

func (l *Loader) LoadDataset(path string) (domain.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, &domain.OpError{
			Op:   "yamldataset.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var yd yamlDataset
	if err := yaml.Unmarshal(b, &yd); err != nil {
		return domain.Dataset{}, &domain.OpError{
			Op:   "yamldataset.load",
			Kind: domain.KindInvalidData,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, yd)
}

func (l *Loader) ListDatasets(root string) ([]domain.DatasetRef, error) {
	dir := l.dataDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamldataset.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.DatasetRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readDatasetName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.DatasetRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readDatasetName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

// Cells are strings so half-typed rows load exactly as written;
// unquoted YAML numbers decode into them verbatim.
type yamlDataset struct {
	Name    string      `yaml:"name"`
	Headers yamlHeaders `yaml:"headers"`
	Rows    []yamlRow   `yaml:"rows"`
}

type yamlHeaders struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

type yamlRow struct {
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

func mapAndValidate(path string, yd yamlDataset) (domain.Dataset, error) {
	name := strings.TrimSpace(yd.Name)
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ds := domain.Dataset{
		Name:    name,
		Path:    path,
		Headers: domain.Headers{X: strings.TrimSpace(yd.Headers.X), Y: strings.TrimSpace(yd.Headers.Y)}.Display(),
		Rows:    make([]domain.Row, 0, len(yd.Rows)),
	}

	if ds.Headers.X == ds.Headers.Y {
		return domain.Dataset{}, invalidField(path, "headers", fmt.Sprintf("x and y captions must differ, both are %q", ds.Headers.X))
	}

	for _, r := range yd.Rows {
		ds.Rows = append(ds.Rows, domain.Row{X: strings.TrimSpace(r.X), Y: strings.TrimSpace(r.Y)})
	}

	return ds, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamldataset.validate",
		Kind: domain.KindInvalidData,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}
