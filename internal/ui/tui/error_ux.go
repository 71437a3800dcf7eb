package tui

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aalvaropc/linefit/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

func userMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {

		case domain.KindNotFound:
			if strings.HasPrefix(oe.Op, "yamldataset.list") {
				return "No data directory found"
			}
			if strings.HasPrefix(oe.Op, "yamldataset") {
				return "Dataset not found"
			}
			if strings.Contains(oe.Op, "workspacefinder.findroot") {
				return "Workspace not found"
			}
			return "Not found"

		case domain.KindInvalidConfig, domain.KindInvalidData:
			what := "config"
			if oe.Kind == domain.KindInvalidData {
				what = "dataset"
			}
			base := what
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}

			line := extractLine(err.Error())
			if line != "" {
				return "Invalid YAML at " + base + " line " + line
			}
			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			if strings.TrimSpace(oe.Path) == "" {
				return "Invalid " + what
			}
			return "Invalid " + what + " (" + base + ")"

		case domain.KindInsufficientData:
			return "Need at least 2 data points"

		case domain.KindBusy:
			return "Training already in progress"

		case domain.KindTraining:
			return "Training failed (see logs)"

		case domain.KindExecution:
			if strings.HasPrefix(oe.Op, "plotcanvas") {
				return "Export failed (see logs)"
			}
			return "Could not write files (see logs)"

		default:
			return "Unexpected error (see logs)"
		}
	}

	if looksLikeYAMLProblem(err.Error()) {
		line := extractLine(err.Error())
		if line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}

	return "Unexpected error (see logs)"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
