package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aalvaropc/linefit/internal/domain"
	"gopkg.in/yaml.v3"
)

const FileName = "linefit.yaml"

// Load reads a config file. A missing file is reported as not_found together
// with the defaults, so callers may choose to continue.
func Load(path string) (domain.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapConfig(path, dto)
}

// LoadOrDefault loads <root>/linefit.yaml and falls back to the defaults when
// the file does not exist. Malformed files are still errors.
func LoadOrDefault(root string) (domain.Config, error) {
	path := filepath.Join(root, FileName)
	cfg, err := Load(path)
	if err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) && oe.Kind == domain.KindNotFound && errors.Is(oe.Err, fs.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return cfg, err
	}
	return cfg, nil
}
