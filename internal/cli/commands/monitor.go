package commands

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aquameter-labs/aquameter/internal/engine"
)

// MonitorOptions holds options for the monitor command.
type MonitorOptions struct {
	Interval time.Duration
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand() *cobra.Command {
	opts := &MonitorOptions{}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the simulation live in the terminal",
		Long: `Run the simulation in the terminal with a live view.

Each interval advances the simulation by one hour and refreshes the
session totals, optimization score and the recent usage sparkline.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 2*time.Second, "Tick interval")

	return cmd
}

func runMonitor(cmd *cobra.Command, opts *MonitorOptions) error {
	cfg := GetConfig(cmd.Context())

	eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
	if err != nil {
		return err
	}
	defer cleanup()

	m := monitorModel{eng: eng, interval: opts.Interval}
	p := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}

type monitorTickMsg time.Time

type monitorDataMsg struct {
	points  []engine.StreamPoint
	metrics engine.MetricsPayload
	err     error
}

type monitorModel struct {
	eng      *engine.Engine
	interval time.Duration

	points  []engine.StreamPoint
	metrics engine.MetricsPayload
	err     error
	width   int
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.refresh, m.tick())
}

func (m monitorModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

// refresh advances the simulation one hour and pulls fresh metrics.
func (m monitorModel) refresh() tea.Msg {
	points, err := m.eng.StreamTick()
	if err != nil {
		return monitorDataMsg{err: err}
	}
	metrics, err := m.eng.Metrics()
	if err != nil {
		return monitorDataMsg{err: err}
	}
	return monitorDataMsg{points: points, metrics: metrics}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case monitorTickMsg:
		return m, tea.Batch(m.refresh, m.tick())

	case monitorDataMsg:
		m.err = msg.err
		if msg.err == nil {
			m.points = msg.points
			m.metrics = msg.metrics
		}
	}
	return m, nil
}

var (
	monitorTitleStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	monitorLabelStyle  = lipgloss.NewStyle().Faint(true)
	monitorHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	monitorNormalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	monitorBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m monitorModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.\n", m.err)
	}
	if len(m.points) == 0 {
		return "Waiting for simulation data...\n\nPress q to quit.\n"
	}

	latest := m.points[len(m.points)-1]
	opt := m.metrics.Stats.Optimization
	sys := m.metrics.Stats.System

	statusStyle := monitorNormalStyle
	if latest.Status == "high" {
		statusStyle = monitorHighStyle
	}

	var b strings.Builder
	b.WriteString(monitorTitleStyle.Render("Aquameter Live Monitor"))
	b.WriteString("\n\n")

	current := fmt.Sprintf("%s  %s  %.1f L  %s",
		latest.Timestamp.Format("Jan 2 15:04"),
		monitorLabelStyle.Render("usage"),
		latest.UsageLiters,
		statusStyle.Render(latest.Status),
	)
	b.WriteString(monitorBoxStyle.Render(current))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %.1f L   %s %.2f   %s %.0f/100 (%s)\n",
		monitorLabelStyle.Render("session usage"), sys.TotalUsage,
		monitorLabelStyle.Render("session cost"), sys.TotalCost,
		monitorLabelStyle.Render("score"), opt.Score, opt.Status,
	))
	b.WriteString(fmt.Sprintf("%s %.2f / %.2f   %s %.1f L\n",
		monitorLabelStyle.Render("projection"), sys.Projection, m.metrics.Budget,
		monitorLabelStyle.Render("daily target"), opt.DailyWaterTarget,
	))
	b.WriteString("\n")
	b.WriteString(sparkline(m.points))
	b.WriteString("\n\n")
	b.WriteString(monitorLabelStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

// sparkline renders the window's hourly usage as block characters.
func sparkline(points []engine.StreamPoint) string {
	blocks := []rune("▁▂▃▄▅▆▇█")

	var maxUsage float64
	for _, p := range points {
		if p.UsageLiters > maxUsage {
			maxUsage = p.UsageLiters
		}
	}
	if maxUsage <= 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range points {
		idx := int(p.UsageLiters / maxUsage * float64(len(blocks)-1))
		b.WriteRune(blocks[idx])
	}
	return b.String()
}
