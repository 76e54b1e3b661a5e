package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/ossian-dev/pendguard/internal/config"
	"github.com/ossian-dev/pendguard/internal/mode"
	"github.com/ossian-dev/pendguard/internal/pendulum"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	graphWidth      = 70
	graphHeight     = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	modeStyles = map[mode.Mode]lipgloss.Style{
		mode.Nominal:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Bold(true).Padding(0, 1),
		mode.Degraded:  lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")).Bold(true).Padding(0, 1),
		mode.Safe:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("208")).Bold(true).Padding(0, 1),
		mode.Emergency: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("196")).Bold(true).Blink(true).Padding(0, 1),
	}
)

type TickMsg time.Time

// Model runs the closed loop interactively: number keys inject sensor
// faults, "e" forces recovery from EMERGENCY.
type Model struct {
	ctrl    *pendulum.Controller
	cfg     *config.Config
	noise   pendulum.Noise
	canvas  *Canvas
	t       float64
	running bool

	faulted [pendulum.NumSensors]bool

	confHistory   []float64
	torqueHistory []float64
}

func NewModel(cfg *config.Config) (*Model, error) {
	ctrl, err := pendulum.New(cfg.Dt)
	if err != nil {
		return nil, err
	}
	if err := ctrl.SetParams(cfg.Params()); err != nil {
		return nil, err
	}
	ctrl.Kin.Theta1 = cfg.InitState.Theta1
	ctrl.Kin.Omega1 = cfg.InitState.Omega1
	ctrl.Kin.Theta2 = cfg.InitState.Theta2
	ctrl.Kin.Omega2 = cfg.InitState.Omega2

	return &Model{
		ctrl:          ctrl,
		cfg:           cfg,
		noise:         cfg.NoiseModel(),
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		running:       true,
		confHistory:   make([]float64, 0, historyCapacity),
		torqueHistory: make([]float64, 0, historyCapacity),
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "e":
			m.ctrl.ForceMode(mode.Safe)
		case "1", "2", "3", "4", "5":
			idx := int(msg.String()[0] - '1')
			m.faulted[idx] = !m.faulted[idx]
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	m.ctrl.UpdateSensors(m.noise)
	for i, failed := range m.faulted {
		if failed {
			m.ctrl.FailSensor(i)
		}
	}

	torque := m.ctrl.ControlStep()
	m.ctrl.Integrate(torque)
	m.t += m.cfg.Dt

	m.confHistory = append(m.confHistory, m.ctrl.Control.Confidence)
	if len(m.confHistory) > historyCapacity {
		m.confHistory = m.confHistory[1:]
	}
	m.torqueHistory = append(m.torqueHistory, torque)
	if len(m.torqueHistory) > historyCapacity {
		m.torqueHistory = m.torqueHistory[1:]
	}
}

func (m *Model) reset() {
	m.t = 0
	m.ctrl.Kin = pendulum.Kinematics{
		Theta1: m.cfg.InitState.Theta1,
		Omega1: m.cfg.InitState.Omega1,
		Theta2: m.cfg.InitState.Theta2,
		Omega2: m.cfg.InitState.Omega2,
	}
	m.ctrl.ResetStatistics()
	m.ctrl.ForceMode(mode.Nominal)
	m.faulted = [pendulum.NumSensors]bool{}
	m.confHistory = m.confHistory[:0]
	m.torqueHistory = m.torqueHistory[:0]
}

// drawPendulum renders both links from a pivot at the canvas top center.
// Angles are measured from hanging-down, so screen-down is angle zero.
func (m *Model) drawPendulum() {
	m.canvas.Clear()

	subW := float64(canvasWidth * 2)
	subH := float64(canvasHeight * 4)
	pivotX, pivotY := subW/2, subH*0.15

	p := m.ctrl.Params()
	scale := subH * 0.38 / (p.L1 + p.L2)

	x1 := pivotX + scale*p.L1*math.Sin(m.ctrl.Kin.Theta1)
	y1 := pivotY + scale*p.L1*math.Cos(m.ctrl.Kin.Theta1)
	x2 := x1 + scale*p.L2*math.Sin(m.ctrl.Kin.Theta2)
	y2 := y1 + scale*p.L2*math.Cos(m.ctrl.Kin.Theta2)

	m.canvas.DrawLine(int(pivotX), int(pivotY), int(x1), int(y1))
	m.canvas.DrawLine(int(x1), int(y1), int(x2), int(y2))
}

func (m *Model) View() string {
	m.drawPendulum()

	var s strings.Builder
	s.WriteString(headerStyle.Render("PENDGUARD LIVE") + " ")
	s.WriteString(modeStyles[m.ctrl.Modes.Current()].Render(m.ctrl.Modes.Current().String()))
	if !m.running {
		s.WriteString("  PAUSED")
	}
	s.WriteString("\n")

	s.WriteString(canvasStyle.Render(m.canvas.String()))
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("t", fmt.Sprintf("%.2f s", m.t))
	row("theta1/theta2", fmt.Sprintf("%+.3f / %+.3f rad", m.ctrl.Kin.Theta1, m.ctrl.Kin.Theta2))
	row("omega1/omega2", fmt.Sprintf("%+.3f / %+.3f rad/s", m.ctrl.Kin.Omega1, m.ctrl.Kin.Omega2))
	row("energy", fmt.Sprintf("%.3f J", m.ctrl.Energy()))
	row("confidence", fmt.Sprintf("%.4f (avg %.4f)", m.ctrl.Control.Confidence, m.ctrl.Control.AvgConfidence))
	row("sensors", m.sensorLine())

	if len(m.confHistory) > 1 {
		graph := asciigraph.Plot(m.confHistory,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("fused confidence"),
		)
		s.WriteString(graphStyle.Render(graph) + "\n")
	}
	if len(m.torqueHistory) > 1 {
		graph := asciigraph.Plot(m.torqueHistory,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("torque (Nm)"),
		)
		s.WriteString(graphStyle.Render(graph) + "\n")
	}

	s.WriteString(helpStyle.Render("[1-5] toggle sensor fault  [e] force SAFE  [space] pause  [r] reset  [q] quit"))
	return s.String()
}

func (m *Model) sensorLine() string {
	names := []string{"enc1", "enc2", "gyro1", "gyro2", "accel"}
	parts := make([]string, len(names))
	for i, name := range names {
		if m.faulted[i] {
			parts[i] = name + ":FAIL"
		} else {
			parts[i] = fmt.Sprintf("%s:%.2f", name, m.ctrl.Sensors[i].Confidence)
		}
	}
	return strings.Join(parts, "  ")
}

// Run starts the interactive loop in the alternate screen.
func Run(cfg *config.Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
