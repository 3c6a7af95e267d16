package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Drive the stopwatch from the keyboard while the clock runs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		delay, _ := cmd.Flags().GetDuration("delay")
		if delay <= 0 {
			return fmt.Errorf("interactive mode needs a positive --delay, got %s", delay)
		}

		device := stopwatch.MakeBuilder().Build("Stopwatch")
		d, err := driver.MakeBuilder().WithOutput(io.Discard).Build(device)
		if err != nil {
			return err
		}

		p := tea.NewProgram(newPanel(d, delay), tea.WithAltScreen())
		_, err = p.Run()

		return err
	},
}

func init() {
	interactiveCmd.Flags().Duration("delay", time.Second, "wall-clock length of one tick")
	rootCmd.AddCommand(interactiveCmd)
}

type panelKeys struct {
	Start       key.Binding
	Stop        key.Binding
	Reset       key.Binding
	MasterReset key.Binding
	Freeze      key.Binding
	Quit        key.Binding
}

func (k panelKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Reset, k.MasterReset, k.Freeze, k.Quit}
}

func (k panelKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultPanelKeys = panelKeys{
	Start:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Stop:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "stop")),
	Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	MasterReset: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "hold master reset")),
	Freeze:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "freeze clock")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type clockMsg time.Time

var (
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	panelInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// panel is the interactive view. Key presses queue one-tick pulses that are
// applied on the next clock tick; the master reset is held until toggled.
type panel struct {
	d      *driver.Driver
	delay  time.Duration
	keys   panelKeys
	help   help.Model
	styler report.Styler

	pending     []driver.Line
	masterReset bool
	frozen      bool
}

func newPanel(d *driver.Driver, delay time.Duration) panel {
	return panel{
		d:      d,
		delay:  delay,
		keys:   defaultPanelKeys,
		help:   help.New(),
		styler: report.NewColorStyler(),
	}
}

func (m panel) clock() tea.Cmd {
	return tea.Tick(m.delay, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m panel) Init() tea.Cmd {
	return m.clock()
}

func (m panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case clockMsg:
		if !m.frozen {
			m.step()
		}

		return m, m.clock()
	}

	return m, nil
}

func (m panel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		m.pending = append(m.pending, driver.LineStart)
	case key.Matches(msg, m.keys.Stop):
		m.pending = append(m.pending, driver.LineStop)
	case key.Matches(msg, m.keys.Reset):
		m.pending = append(m.pending, driver.LineLocalReset)
	case key.Matches(msg, m.keys.MasterReset):
		m.masterReset = !m.masterReset
		_ = m.d.Set(driver.LineMasterReset, m.masterReset)
	case key.Matches(msg, m.keys.Freeze):
		m.frozen = !m.frozen
	}

	return m, nil
}

// step issues one tick with the queued pulses asserted.
func (m *panel) step() {
	for _, l := range m.pending {
		_ = m.d.Set(l, true)
	}

	m.d.Tick()

	for _, l := range m.pending {
		_ = m.d.Set(l, false)
	}

	m.pending = nil
}

func (m panel) View() string {
	var b strings.Builder

	out := m.d.Device().Outputs()

	b.WriteString(panelTitleStyle.Render("Digital Stopwatch Controller"))
	b.WriteString("\n\n")
	b.WriteString(m.styler.Render(out.Status, out.Minutes, out.Seconds))
	b.WriteString("\n\n")

	info := fmt.Sprintf("cycle %d", m.d.CurrentTime())
	if m.masterReset {
		info += "  master reset held"
	}

	if m.frozen {
		info += "  clock frozen"
	}

	b.WriteString(panelInfoStyle.Render(info))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}
