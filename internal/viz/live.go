package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/control"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

const (
	width           = 60
	height          = 22
	historyCapacity = 600
	trailLength     = 80
)

// Mechanism is a multibody system that can be posed from a state.
type Mechanism interface {
	dynamo.System
	dynamo.Hamiltonian
	SetState(x dynamo.State) error
	Poses() []multibody.Pose
}

type Options struct {
	Title       string
	Coordinates []string
	Dt          float64
	FPS         int
	// Effort is the force a manual key press applies.
	Effort  float64
	GIFPath string
}

// Snapshot stores state at a specific time for replay.
type Snapshot struct {
	State  dynamo.State
	Time   float64
	Energy float64
}

type TickMsg time.Time

// Model steps a mechanism in real time and draws it.
type Model struct {
	mech       Mechanism
	integrator dynamo.Integrator
	controller dynamo.Controller
	manual     *control.Manual
	opts       Options

	x, x0         dynamo.State
	u             dynamo.Control
	t             float64
	stepsPerFrame int
	e0            float64

	canvas   *Canvas
	view     Viewport
	trail    [][2]int
	energy   []float64
	history  []Snapshot
	playHead int

	coord    int
	running  bool
	showHelp bool
	err      error
	recorder *Recorder
	notice   string
}

// NewModel prepares a live view of mech from x0. A *control.Manual
// controller is driven from the keyboard.
func NewModel(mech Mechanism, integ dynamo.Integrator, ctrl dynamo.Controller, x0 dynamo.State, opts Options) (Model, error) {
	if opts.Dt <= 0 {
		return Model{}, fmt.Errorf("%w: dt must be positive", dynamo.ErrConfiguration)
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Effort == 0 {
		opts.Effort = 5
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "simulation.gif"
	}
	if err := mech.SetState(x0); err != nil {
		return Model{}, err
	}

	m := Model{
		mech:          mech,
		integrator:    integ,
		controller:    ctrl,
		opts:          opts,
		x:             x0.Clone(),
		x0:            x0.Clone(),
		u:             make(dynamo.Control, mech.ControlDim()),
		stepsPerFrame: max(1, int(math.Round(1/(float64(opts.FPS)*opts.Dt)))),
		e0:            mech.Energy(x0),
		canvas:        NewCanvas(width, height),
		energy:        make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		running:       true,
	}
	m.manual, _ = ctrl.(*control.Manual)
	m.view = FitViewport(m.canvas, math.Max(0.5, Reach(mech.Poses())))
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			if n := len(m.u); n > 0 {
				m.coord = (m.coord + 1) % n
			}
		case "left", "h":
			m.push(-m.opts.Effort)
		case "right", "l":
			m.push(m.opts.Effort)
		case "0":
			if m.manual != nil {
				m.manual.Clear()
			}
		case "t":
			NextTheme()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) push(v float64) {
	if m.manual != nil {
		m.manual.Set(m.coord, v)
	}
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = &Recorder{}
		m.notice = ""
		return
	}
	n := m.recorder.Len()
	if err := m.recorder.Save(m.opts.GIFPath, 100/m.opts.FPS); err != nil {
		m.notice = "gif: " + err.Error()
	} else {
		m.notice = fmt.Sprintf("saved %d frames to %s", n, m.opts.GIFPath)
	}
	m.recorder = nil
}

// advance runs one frame worth of integration steps. A failed step pauses
// the view and keeps the last good state.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		m.u = m.controller.Compute(m.x, m.t)
		next, err := m.integrator.Step(m.mech, m.x, m.u, m.t, m.opts.Dt)
		if err == nil && !next.IsValid() {
			err = dynamo.ErrInvalidState
		}
		if err != nil {
			m.err = &dynamo.SimulationError{Time: m.t, State: m.x.Clone(), Wrapped: err}
			m.running = false
			return
		}
		m.x = next
		m.t += m.opts.Dt
	}

	e := m.mech.Energy(m.x)
	m.energy = appendCapped(m.energy, e)
	m.history = append(m.history, Snapshot{State: m.x.Clone(), Time: m.t, Energy: e})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) reset() {
	m.x = m.x0.Clone()
	m.t = 0
	m.u = make(dynamo.Control, len(m.u))
	m.trail = m.trail[:0]
	m.energy = m.energy[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.err = nil
	m.running = true
	if m.manual != nil {
		m.manual.Clear()
	}
	if r, ok := m.controller.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// shown returns the state on screen: the live one or the replayed one.
func (m *Model) shown() (dynamo.State, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		s := m.history[m.playHead]
		return s.State, s.Time
	}
	return m.x, m.t
}

func (m *Model) draw() {
	x, _ := m.shown()
	m.canvas.Clear()
	if err := m.mech.SetState(x); err != nil {
		return
	}
	poses := m.mech.Poses()
	if len(poses) > 0 && m.playHead == -1 {
		tx, ty := m.view.Dot(far(poses[len(poses)-1]))
		m.trail = append(m.trail, [2]int{tx, ty})
		if len(m.trail) > trailLength {
			m.trail = m.trail[1:]
		}
	}
	for _, p := range m.trail {
		m.canvas.Set(p[0], p[1])
	}
	DrawMechanism(m.canvas, m.view, poses)
	m.canvas.DrawMark(m.view.OX, m.view.OY)
}

func (m Model) View() string {
	x, t := m.shown()

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	e := m.mech.Energy(x)
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f J", e)) + "\n")
	if m.e0 != 0 {
		s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", math.Abs(e-m.e0)/math.Abs(m.e0))) + "\n")
	}

	s.WriteString("\nCOORDINATES\n")
	q, qDot := x.Split()
	for i := range q {
		name := fmt.Sprintf("q%d", i)
		if i < len(m.opts.Coordinates) {
			name = m.opts.Coordinates[i]
		}
		line := fmt.Sprintf("%-10s %8.3f %8.3f", name, q[i], qDot[i])
		if i < len(m.u) && m.u[i] != 0 {
			line += fmt.Sprintf("  u=%.1f", m.u[i])
		}
		if m.manual != nil && i == m.coord {
			s.WriteString(activeStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}

	help := "SP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help\n[ ]:Time-Travel"
	if m.manual != nil {
		help += "\nTab:Joint ←→:Push 0:Release"
	}
	s.WriteString(helpStyle.Render(help))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle().Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpScreen + "\n\n" + main
	}
	return main
}

func (m Model) status() string {
	var parts []string
	switch {
	case m.err != nil:
		parts = append(parts, errorStyle.Render("FAILED: "+m.err.Error()))
	case m.playHead != -1:
		last := m.history[len(m.history)-1].Time
		parts = append(parts, fmt.Sprintf("REPLAY (%.1fs)", m.history[m.playHead].Time-last))
	case !m.running:
		parts = append(parts, "PAUSED")
	default:
		parts = append(parts, "RUNNING")
	}
	if m.recorder != nil {
		parts = append(parts, recordStyle.Render("● REC"))
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return strings.Join(parts, "  ")
}

const helpScreen = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space      - Pause/Resume           ║
║  R          - Reset                  ║
║  Q          - Quit                   ║
║  [ ]        - Time travel            ║
║  Tab        - Select joint (manual)  ║
║  Left/Right - Push joint (manual)    ║
║  0          - Release (manual)       ║
║  G          - Toggle GIF recording   ║
║  T          - Cycle themes           ║
║  ?          - Toggle this help       ║
╚══════════════════════════════════════╝`

// Run shows the live view until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
