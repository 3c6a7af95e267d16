package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// A Styler renders status lines for a terminal.
type Styler interface {
	Render(code stopwatch.StatusCode, minutes, seconds uint8) string
}

// PlainStyler renders Line unchanged.
type PlainStyler struct{}

// Render returns Line(code, minutes, seconds).
func (PlainStyler) Render(code stopwatch.StatusCode, minutes, seconds uint8) string {
	return Line(code, minutes, seconds)
}

// ColorStyler colors the status label by state.
type ColorStyler struct {
	statusStyles map[stopwatch.StatusCode]lipgloss.Style
	unknownStyle lipgloss.Style
	timeStyle    lipgloss.Style
}

// NewColorStyler creates a ColorStyler with the default palette.
func NewColorStyler() *ColorStyler {
	return &ColorStyler{
		statusStyles: map[stopwatch.StatusCode]lipgloss.Style{
			stopwatch.StatusIdle: lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")),
			stopwatch.StatusRunning: lipgloss.NewStyle().
				Foreground(lipgloss.Color("42")).Bold(true),
			stopwatch.StatusPaused: lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")),
		},
		unknownStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		timeStyle:    lipgloss.NewStyle().Bold(true),
	}
}

// Render returns the status line with styled fields.
func (s *ColorStyler) Render(code stopwatch.StatusCode, minutes, seconds uint8) string {
	style, ok := s.statusStyles[code]
	if !ok {
		style = s.unknownStyle
	}

	label := style.Render(fmt.Sprintf("%-7s", StatusString(code)))
	clock := s.timeStyle.Render(FormatTime(minutes, seconds))

	return "Status: " + label + " | Time: " + clock
}
