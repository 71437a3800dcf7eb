// Package table holds the editable data rows and derives the point list
// from them.
//
// Table is a value type: every mutating method returns a new Table and never
// touches the receiver's rows, so callers can keep older states around.
package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/aalvaropc/linefit/internal/domain"
)

type Column int

const (
	ColX Column = iota
	ColY
)

func (c Column) String() string {
	if c == ColY {
		return "y"
	}
	return "x"
}

type Table struct {
	rows []domain.Row
}

// New returns a table with a single empty row.
func New() Table {
	return Table{rows: []domain.Row{{}}}
}

func FromRows(rows []domain.Row) Table {
	return Table{rows: append([]domain.Row(nil), rows...)}
}

// FromPoints formats points as rows using the shortest exact representation.
func FromPoints(points []domain.Point) Table {
	rows := make([]domain.Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, domain.Row{
			X: strconv.FormatFloat(p.X, 'g', -1, 64),
			Y: strconv.FormatFloat(p.Y, 'g', -1, 64),
		})
	}
	return Table{rows: rows}
}

func (t Table) Len() int { return len(t.rows) }

func (t Table) Rows() []domain.Row {
	return append([]domain.Row(nil), t.rows...)
}

func (t Table) Cell(i int, col Column) string {
	if i < 0 || i >= len(t.rows) {
		return ""
	}
	if col == ColY {
		return t.rows[i].Y
	}
	return t.rows[i].X
}

func (t Table) AddRow() Table {
	rows := make([]domain.Row, len(t.rows), len(t.rows)+1)
	copy(rows, t.rows)
	return Table{rows: append(rows, domain.Row{})}
}

// DeleteRow removes row i. Out-of-range indexes leave the table unchanged.
func (t Table) DeleteRow(i int) Table {
	if i < 0 || i >= len(t.rows) {
		return t
	}
	rows := make([]domain.Row, 0, len(t.rows)-1)
	rows = append(rows, t.rows[:i]...)
	rows = append(rows, t.rows[i+1:]...)
	return Table{rows: rows}
}

// SetCell replaces the text of one cell. Out-of-range rows are ignored.
func (t Table) SetCell(i int, col Column, text string) Table {
	if i < 0 || i >= len(t.rows) {
		return t
	}
	rows := t.Rows()
	if col == ColY {
		rows[i].Y = text
	} else {
		rows[i].X = text
	}
	return Table{rows: rows}
}

// Points rescans every row. Rows with a missing or non-numeric x or y are
// skipped; they are a normal mid-edit state, not an error.
func (t Table) Points() []domain.Point {
	points := make([]domain.Point, 0, len(t.rows))
	for _, r := range t.rows {
		if p, ok := ParseRow(r); ok {
			points = append(points, p)
		}
	}
	return points
}

// Skipped counts rows that do not produce a point.
func (t Table) Skipped() int {
	n := 0
	for _, r := range t.rows {
		if _, ok := ParseRow(r); !ok {
			n++
		}
	}
	return n
}

func ParseRow(r domain.Row) (domain.Point, bool) {
	x, okX := ParseCell(r.X)
	y, okY := ParseCell(r.Y)
	if !okX || !okY {
		return domain.Point{}, false
	}
	return domain.Point{X: x, Y: y}, true
}

// ParseCell parses a finite float. Blank, malformed, NaN and infinite values
// are rejected.
func ParseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
