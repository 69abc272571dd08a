// Package tui is the interactive terminal front end: a live membrane
// chart and spike raster over a running simulation, with pause,
// single-step and speed control.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spikesim/internal/engine"
	"github.com/san-kum/spikesim/internal/experiment"
	"github.com/san-kum/spikesim/internal/neuro"
	"github.com/san-kum/spikesim/internal/viz"
)

const (
	chartWidth    = 70
	chartHeight   = 10
	rasterWidth   = 70
	rasterWindow  = 5.0
	historyLimit  = 280
	ticksPerFrame = 4
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	chartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a live run of one experiment.
type Model struct {
	exp     *experiment.Experiment
	stepper *engine.Stepper

	traceID  neuro.NeuronID
	traceVar string
	neurons  int

	history  []float64
	lastTick int64
	err      error
}

// NewModel wraps a built experiment for live viewing. The membrane
// chart follows the first neuron of the first population.
func NewModel(exp *experiment.Experiment) Model {
	s := exp.Stepper()

	neurons := 0
	for _, pop := range exp.Populations() {
		neurons += len(exp.Population(pop))
	}

	var traceID neuro.NeuronID
	if pops := exp.Populations(); len(pops) > 0 {
		if ids := exp.Population(pops[0]); len(ids) > 0 {
			traceID = ids[0]
		}
	}

	return Model{
		exp:      exp,
		stepper:  s,
		traceID:  traceID,
		traceVar: "v",
		neurons:  neurons,
		history:  make([]float64, 0, historyLimit),
		lastTick: -1,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.stepper.Paused() {
				m.stepper.Resume()
			} else {
				m.stepper.Pause()
			}
		case "s":
			if _, err := m.stepper.Step(); err != nil {
				m.err = err
			}
			m.sample()
		case "+", "=":
			m.setSpeed(m.stepper.Speed() * 1.25)
		case "-", "_":
			m.setSpeed(m.stepper.Speed() / 1.25)
		}
	case TickMsg:
		if m.err == nil && !m.stepper.Paused() {
			if _, err := m.stepper.Advance(ticksPerFrame); err != nil {
				m.err = err
			}
			m.sample()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) setSpeed(mult float64) {
	if err := m.stepper.SetSpeed(mult); err != nil {
		m.err = err
	}
}

func (m *Model) sample() {
	if m.stepper.Tick() == m.lastTick {
		return
	}
	m.lastTick = m.stepper.Tick()

	v, err := m.stepper.Var(m.traceID, m.traceVar)
	if err != nil {
		return
	}
	m.history = append(m.history, v)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("spikesim live") + "\n")

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(fmt.Sprintf("neuron %d %s", m.traceID, m.traceVar)),
		)
		b.WriteString(chartStyle.Render(chart) + "\n\n")
	}

	now := m.stepper.Now()
	start := now - rasterWindow
	if start < 0 {
		start = 0
	}
	if now > start {
		raster := viz.Raster(m.exp.SpikeRecorder().Spikes(), m.neurons, start, now, rasterWidth)
		if raster != "" {
			b.WriteString(raster + "\n")
		}
	}

	b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3f", now)) + "\n")
	b.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", m.stepper.Tick())) + "\n")
	b.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%.2fx", m.stepper.Speed())) + "\n")
	b.WriteString(labelStyle.Render("Pending") + valueStyle.Render(fmt.Sprintf("%d", m.stepper.PendingEvents())) + "\n")
	b.WriteString(labelStyle.Render("Spikes") + valueStyle.Render(fmt.Sprintf("%d", len(m.exp.SpikeRecorder().Spikes()))) + "\n")

	if m.stepper.Paused() {
		b.WriteString(pausedStyle.Render("PAUSED") + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("space pause/resume · s step · +/- speed · q quit"))
	return b.String()
}

// Run starts the live view and blocks until the user quits.
func Run(exp *experiment.Experiment) error {
	p := tea.NewProgram(NewModel(exp), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
