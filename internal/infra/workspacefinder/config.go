package workspacefinder

import (
	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/infra/config"
)

// LoadConfig resolves the workspace for startDir and loads its config. It
// returns the root together with the config; defaults apply when there is
// no linefit.yaml.
func LoadConfig(startDir string) (string, domain.Config, error) {
	root := NewFinder().Resolve(startDir)
	cfg, err := config.LoadOrDefault(root)
	return root, cfg, err
}
