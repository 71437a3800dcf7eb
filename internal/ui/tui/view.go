package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/usecase/table"
)

// visibleRows bounds the table card height.
const visibleRows = 8

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(0, 1)

	name := m.state.DatasetName
	if name == "" {
		name = "untitled"
	}
	header := m.theme.Title.Render("linefit") + "  " +
		m.theme.Subtitle.Render("interactive linear regression • "+name)
	if m.deps.Debug {
		header += m.theme.Help.Render("  [debug]")
	}

	var banner string
	if m.workspaceFound {
		banner = m.theme.Help.Render("Workspace: " + m.workspaceRoot)
	} else {
		banner = m.theme.Help.Render("No workspace found • W to init one in " + m.workspaceRoot)
	}

	var body string
	if m.mode == modePicker {
		body = m.theme.Focused.Render(m.picker.View())
	} else {
		side := lipgloss.JoinVertical(lipgloss.Left,
			m.card(paneTable).Render(m.viewTable()),
			m.card(paneTraining).Render(m.viewTraining()),
			m.theme.Card.Width(sideWidth-2).Render(m.viewReadouts()),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.card(paneGraph).Render(m.plot), " ", side)
	}

	footer := m.viewStatus()
	if m.toast != "" {
		footer += "  " + m.theme.Toast.Render(m.toast)
	}

	return wrap.Render(header + "\n" + banner + "\n" + body + "\n" + footer + "\n" + m.help.View(m.keys))
}

func (m model) card(p pane) lipgloss.Style {
	st := m.theme.Card
	if m.focus == p && m.mode != modePicker {
		st = m.theme.Focused
	}
	if p != paneGraph {
		st = st.Width(sideWidth - 2)
	}
	return st
}

func (m model) viewTable() string {
	var b strings.Builder
	h := m.state.Headers.Display()
	focused := m.focus == paneTable

	b.WriteString(m.theme.Label.Render(fmt.Sprintf("%-4s", "#")))
	b.WriteString(m.cellView(headerRow, table.ColX, h.X, m.theme.Header, focused))
	b.WriteString(" ")
	b.WriteString(m.cellView(headerRow, table.ColY, h.Y, m.theme.Header, focused))
	b.WriteString("\n")

	n := m.state.Table.Len()
	start := 0
	if m.row >= visibleRows {
		start = m.row - visibleRows + 1
	}
	end := min(n, start+visibleRows)

	for i := start; i < end; i++ {
		b.WriteString(m.theme.Label.Render(fmt.Sprintf("%-4d", i+1)))
		for _, col := range []table.Column{table.ColX, table.ColY} {
			text := m.state.Table.Cell(i, col)
			st := m.theme.Cell
			if _, ok := table.ParseCell(text); !ok && strings.TrimSpace(text) != "" {
				st = m.theme.CellInvalid
			}
			b.WriteString(m.cellView(i, col, text, st, focused))
			if col == table.ColX {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	if end < n {
		b.WriteString(m.theme.Help.Render(fmt.Sprintf("… %d more rows\n", n-end)))
	}

	pts := len(m.state.Points())
	b.WriteString(m.theme.Help.Render(fmt.Sprintf("%d points", pts)))
	if skipped := m.state.Table.Skipped(); skipped > 0 {
		b.WriteString(m.theme.Help.Render(fmt.Sprintf(" • %d skipped", skipped)))
	}
	return b.String()
}

func (m model) cellView(row int, col table.Column, text string, st lipgloss.Style, focused bool) string {
	selected := focused && m.row == row && m.col == col
	if selected && m.mode == modeEdit {
		return m.theme.CellSelected.Render(m.input.View())
	}
	if selected {
		st = m.theme.CellSelected
	}
	if text == "" {
		text = "·"
	}
	return st.Render(clampString(text, 9))
}

func (m model) viewTraining() string {
	focused := m.focus == paneTraining

	field := func(f trainField, label, value string) string {
		v := m.theme.Value.Render(value)
		if focused && m.field == f {
			if m.mode == modeEdit {
				v = m.theme.CellSelected.Render(m.input.View())
			} else {
				v = m.theme.CellSelected.Render(value)
			}
		}
		return m.theme.Label.Render(fmt.Sprintf("%-15s", label)) + v
	}

	state := "idle"
	switch {
	case m.state.Stopping:
		state = "stopping…"
	case m.state.Training:
		state = "training…"
	}

	return field(fieldEpochs, "Epochs", m.state.EpochsText) + "\n" +
		field(fieldLearningRate, "Learning rate", m.state.LearningRateText) + "\n" +
		m.theme.Label.Render(fmt.Sprintf("%-15s", "State")) + state
}

func (m model) viewReadouts() string {
	r := m.readouts
	const barWidth = 17

	return m.theme.Value.Render(r.Equation) + "\n" +
		m.theme.Label.Render("MSE ") + r.MSEText() + m.theme.Label.Render("   SSE ") + r.SSEText() + "\n" +
		m.theme.Label.Render("slope     ") +
		sliderBar(m.state.SlopeSlider, domain.SlopeSliderMin, domain.SlopeSliderMax, barWidth) +
		fmt.Sprintf(" %6.2f", m.state.SlopeSlider) + "\n" +
		m.theme.Label.Render("intercept ") +
		sliderBar(m.state.InterceptSlider, domain.InterceptSliderMin, domain.InterceptSliderMax, barWidth) +
		fmt.Sprintf(" %6.2f", m.state.InterceptSlider)
}

func (m model) viewStatus() string {
	s := m.state.Status
	if s.Text == "" {
		return m.theme.Help.Render("Ready")
	}
	switch s.Tone {
	case domain.ToneSuccess:
		return m.theme.StatusSuccess.Render(s.Text)
	case domain.ToneError:
		return m.theme.StatusError.Render(s.Text)
	default:
		return m.theme.StatusInfo.Render(s.Text)
	}
}
