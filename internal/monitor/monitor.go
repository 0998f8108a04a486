// Package monitor draws the status line in a full-screen BubbleTea view,
// color-coded by CPU temperature.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/pistats/internal/runner"
	"github.com/luki/pistats/internal/stats"
)

// Raspberry Pi firmware starts soft throttling at 80°C and hard at 85°C.
const (
	tempHigh = 80.0
	tempCrit = 85.0
)

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type sampleMsg struct {
	snap stats.Snapshot
	time time.Time
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live view.
type Model struct {
	ctx     context.Context
	sampler runner.Sampler
	policy  runner.Policy

	snap      stats.Snapshot
	hasSnap   bool
	err       error // last retried error, shown in the view
	fatal     error // error that ended the program
	width     int
	height    int
	lastPoll  time.Time
	startTime time.Time
	paused    bool
}

// New creates the initial model.
func New(ctx context.Context, sampler runner.Sampler, policy runner.Policy) Model {
	return Model{
		ctx:       ctx,
		sampler:   sampler,
		policy:    policy,
		startTime: time.Now(),
	}
}

// Run shows the live view until the user quits, ctx is cancelled, or a
// sample fails under runner.PolicyExit.
func Run(ctx context.Context, sampler runner.Sampler, policy runner.Policy) error {
	p := tea.NewProgram(
		New(ctx, sampler, policy),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("monitor: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.fatal
	}
	return nil
}

// ── Commands ─────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(runner.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) sampleCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.sampler.Sample(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return sampleMsg{snap: snap, time: time.Now()}
	}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.sampleCmd()
}

// Update schedules the next tick only once the previous sample has
// arrived, so samples never overlap.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.paused {
			return m, tickCmd()
		}
		return m, m.sampleCmd()

	case sampleMsg:
		m.snap = msg.snap
		m.hasSnap = true
		m.lastPoll = msg.time
		m.err = nil
		return m, tickCmd()

	case errMsg:
		if m.policy != runner.PolicyRetry {
			m.fatal = msg.err
			return m, tea.Quit
		}
		m.err = msg.err
		return m, tickCmd()
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorDim      = lipgloss.Color("240")
	colorLabel    = lipgloss.Color("252")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
)

// tempColor picks the line color for a CPU temperature.
func tempColor(v float64) lipgloss.Color {
	switch {
	case v >= tempCrit:
		return colorCrit
	case v >= tempHigh:
		return colorHigh
	case v >= tempHigh*0.85:
		return colorWarn
	default:
		return colorOk
	}
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := m.width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{m.renderTitleBar(contentWidth)}

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(fmt.Sprintf(" ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if !m.hasSnap {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for hardware stats...")
		sections = append(sections, waiting)
	} else {
		line := lipgloss.NewStyle().
			Bold(true).
			Foreground(tempColor(m.snap.TemperatureCelsius)).
			Render(m.snap.String())
		panel := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(contentWidth).
			Align(lipgloss.Center).
			Render(line)
		sections = append(sections, panel)
	}

	sections = append(sections, m.renderFooter(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("PISTATS")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	statusParts := []string{dimS.Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))}

	if !m.lastPoll.IsZero() {
		statusParts = append(statusParts, dimS.Render(m.lastPoll.Format("15:04:05")))
	}

	if m.paused {
		statusParts = append(statusParts, lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Render("PAUSED"))
	}

	sep := dimS.Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := width - lipgloss.Width(logo) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderFooter(width int) string {
	block := func(c lipgloss.Color) string {
		return lipgloss.NewStyle().Foreground(c).Render("██")
	}
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	labelS := lipgloss.NewStyle().Foreground(colorLabel)

	legend := block(colorOk) + dimS.Render(" ok ") +
		block(colorWarn) + dimS.Render(" warm ") +
		block(colorHigh) + dimS.Render(fmt.Sprintf(" ≥%.0f ", tempHigh)) +
		block(colorCrit) + dimS.Render(fmt.Sprintf(" ≥%.0f", tempCrit))

	keys := dimS.Render("q") + labelS.Render(":quit") +
		dimS.Render("  p") + labelS.Render(":pause")

	gap := width - lipgloss.Width(legend) - lipgloss.Width(keys) - 4
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
