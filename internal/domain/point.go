package domain

import "fmt"

// Point is a single observation taken from a table row.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is the hypothesis y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (l Line) Predict(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// Equation formats the line the way the readout panel shows it.
func (l Line) Equation() string {
	return fmt.Sprintf("y = %.2fx + %.2f", l.Slope, l.Intercept)
}

// Loss holds the squared-error readouts of a point set against a line.
type Loss struct {
	SSE float64 `json:"sse"`
	MSE float64 `json:"mse"`
}

// Headers are the user-editable column captions.
type Headers struct {
	X string `json:"x"`
	Y string `json:"y"`
}

func DefaultHeaders() Headers {
	return Headers{X: "X", Y: "Y"}
}

// Display returns the captions with empty values replaced by the defaults.
func (h Headers) Display() Headers {
	out := h
	if out.X == "" {
		out.X = "X"
	}
	if out.Y == "" {
		out.Y = "Y"
	}
	return out
}

// Row is one table row as typed by the user, before numeric parsing.
type Row struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Dataset is a named table loaded from disk.
type Dataset struct {
	Name    string
	Path    string
	Headers Headers
	Rows    []Row
}

// DatasetRef points to a dataset file without loading it.
type DatasetRef struct {
	Name string
	Path string
}
