package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/dynamo"
	"github.com/kevingithub868/Multi-Body-Dynamics-Engine/internal/multibody"
)

// Tumbler is a single body stepped on its own.
type Tumbler interface {
	Step(dt float64) error
	Pose() multibody.Pose
	AngularMomentum() mgl64.Vec3
	Energy() float64
}

// TumbleModel draws a free body in 3D with its angular momentum vector.
type TumbleModel struct {
	newBody func() (Tumbler, error)
	body    Tumbler
	extent  mgl64.Vec3
	dt      float64
	fps     int
	steps   int

	t       float64
	l0, e0  float64
	camera  *Camera
	canvas  *Canvas
	running bool
	err     error
}

// NewTumbleModel shows the body built by newBody, whose semi-axes are
// extent. Reset builds a fresh body.
func NewTumbleModel(newBody func() (Tumbler, error), extent mgl64.Vec3, dt float64, fps int) (TumbleModel, error) {
	if dt <= 0 {
		return TumbleModel{}, fmt.Errorf("%w: dt must be positive", dynamo.ErrConfiguration)
	}
	if fps <= 0 {
		fps = 30
	}
	m := TumbleModel{
		newBody: newBody,
		extent:  extent,
		dt:      dt,
		fps:     fps,
		steps:   max(1, int(1/(float64(fps)*dt)+0.5)),
		camera:  NewCamera(),
		canvas:  NewCanvas(width, height),
	}
	if err := m.reset(); err != nil {
		return TumbleModel{}, err
	}
	return m, nil
}

func (m *TumbleModel) reset() error {
	b, err := m.newBody()
	if err != nil {
		return err
	}
	m.body = b
	m.t = 0
	m.l0 = b.AngularMomentum().Len()
	m.e0 = b.Energy()
	m.err = nil
	m.running = true
	return nil
}

func (m TumbleModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m TumbleModel) Init() tea.Cmd { return m.tick() }

func (m TumbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *TumbleModel) advance() {
	for i := 0; i < m.steps; i++ {
		if err := m.body.Step(m.dt); err != nil {
			m.err = &dynamo.SimulationError{Time: m.t, Wrapped: err}
			m.running = false
			return
		}
		m.t += m.dt
	}
}

func (m TumbleModel) draw() {
	m.canvas.Clear()
	p := m.body.Pose()
	segs := BodyFrame(mgl64.Vec3{}, p.AIB, m.extent)
	reach := m.extent.Len()
	segs = append(segs, Arrow(m.body.AngularMomentum(), 1.5*reach))
	Render3D(m.canvas, segs, m.camera)
}

func (m TumbleModel) View() string {
	m.draw()

	l := m.body.AngularMomentum()
	e := m.body.Energy()

	var s strings.Builder
	s.WriteString(headerStyle().Render("FREE BODY") + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("FAILED: "+m.err.Error()) + "\n\n")
	case !m.running:
		s.WriteString("PAUSED\n\n")
	default:
		s.WriteString("RUNNING\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.6f J", e)) + "\n")
	s.WriteString(labelStyle.Render("|L|") + valueStyle.Render(fmt.Sprintf("%.6f", l.Len())) + "\n")
	if m.l0 > 0 {
		s.WriteString(labelStyle.Render("|L| drift") + valueStyle.Render(fmt.Sprintf("%.2e", (l.Len()-m.l0)/m.l0)) + "\n")
	}
	if m.e0 > 0 {
		s.WriteString(labelStyle.Render("E drift") + valueStyle.Render(fmt.Sprintf("%.2e", (e-m.e0)/m.e0)) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nx/X y/Y:Rotate +/-:Zoom T:Theme"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle().Render(m.canvas.String()), statsStyle.Render(s.String()))
}

// RunTumble shows the free body view until the user quits.
func RunTumble(m TumbleModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
