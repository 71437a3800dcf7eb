package template

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/linefit/internal/domain"
)

// ExportVars are the placeholders an export name may use.
func ExportVars(dataset string, now time.Time) map[string]string {
	return map[string]string{
		"dataset":   Slug(dataset),
		"date":      now.Format("20060102"),
		"time":      now.Format("150405"),
		"timestamp": now.Format("20060102-150405"),
	}
}

// ValidateExportName checks a pattern without needing a real dataset.
func ValidateExportName(pattern string) error {
	_, err := exportName(pattern, "plot", time.Time{})
	return err
}

// ExportPath builds the default output file for a rendered scene: the
// expanded paths.ExportName inside paths.ExportsDir (relative to root).
// A name without an extension gets ".png".
func ExportPath(root string, paths domain.PathsConfig, dataset string, now time.Time) (string, error) {
	name, err := exportName(paths.ExportName, dataset, now)
	if err != nil {
		return "", err
	}

	dir := paths.ExportsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return filepath.Join(dir, name), nil
}

func exportName(pattern, dataset string, now time.Time) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = domain.DefaultConfig().Paths.ExportName
	}
	name, err := RenderString(pattern, ExportVars(dataset, now))
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", invalid(pattern, fmt.Sprintf("export name %q is not a plain file name", name))
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return name, nil
}

// Slug lowercases name and keeps only characters safe in a file name.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "plot"
	}
	return s
}
