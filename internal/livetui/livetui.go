// Package livetui renders a running galaxysim engine to the terminal,
// stepping the simulation on a tick and drawing bodies onto a character
// grid scaled to the current boundary square.
package livetui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-nbody/galaxysim/internal/boundary"
	"github.com/go-nbody/galaxysim/internal/engine"
)

const (
	width  = 100
	height = 36
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	statsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1)
	galaxy1Dot  = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render("o")
	galaxy2Dot  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("o")
	otherDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(".")
)

type tickMsg time.Time

// Model is the bubbletea model driving one live run.
type Model struct {
	eng       *engine.Engine
	maxIter   int
	frameRate int
	err       error
	done      bool
}

// New wraps an already-constructed engine for live display, ticking at
// fps and stopping after maxIter steps (0 means run until quit).
func New(eng *engine.Engine, maxIter int, fps int) Model {
	if fps < 1 {
		fps = 30
	}
	return Model{eng: eng, maxIter: maxIter, frameRate: fps}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		if err := m.eng.Step(); err != nil {
			m.err = err
			m.done = true
			return m, tea.Quit
		}
		if m.maxIter > 0 && m.eng.Iteration() >= m.maxIter {
			m.done = true
			return m, tea.Quit
		}
		return m, tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("galaxysim live"))
	b.WriteString("\n\n")
	b.WriteString(m.render())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(statsStyle.Render(fmt.Sprintf("error: %v", m.err)))
	} else {
		b.WriteString(statsStyle.Render(fmt.Sprintf("iteration %d · %d bodies · press q to quit", m.eng.Iteration(), m.eng.Bodies().Len())))
	}
	return canvasStyle.Render(b.String())
}

func (m Model) render() string {
	store := m.eng.Bodies()
	if store.Len() == 0 {
		return ""
	}

	bnd := boundary.Boundary{MinX: store.Bodies[0].X, MinY: store.Bodies[0].Y, MaxX: store.Bodies[0].X, MaxY: store.Bodies[0].Y}
	for _, bd := range store.Bodies[1:] {
		if bd.X < bnd.MinX {
			bnd.MinX = bd.X
		}
		if bd.X > bnd.MaxX {
			bnd.MaxX = bd.X
		}
		if bd.Y < bnd.MinY {
			bnd.MinY = bd.Y
		}
		if bd.Y > bnd.MaxY {
			bnd.MaxY = bd.Y
		}
	}

	size := bnd.Size()
	if size == 0 {
		size = 1
	}
	scaleX := float64(width-1) / size
	scaleY := float64(height-1) / size

	grid := make([][]int, height)
	for i := range grid {
		grid[i] = make([]int, width)
	}

	for _, bd := range store.Bodies {
		px := int((bd.X - bnd.MinX) * scaleX)
		py := int((bd.Y - bnd.MinY) * scaleY)
		if px < 0 || px >= width || py < 0 || py >= height {
			continue
		}
		py = height - 1 - py
		if grid[py][px] == 0 || int(bd.Color) > grid[py][px] {
			grid[py][px] = int(bd.Color) + 1
		}
	}

	var out strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			switch grid[y][x] {
			case 0:
				out.WriteByte(' ')
			case 2:
				out.WriteString(galaxy1Dot)
			case 3:
				out.WriteString(galaxy2Dot)
			default:
				out.WriteString(otherDot)
			}
		}
		out.WriteByte('\n')
	}
	return out.String()
}

// Run starts the bubbletea program and blocks until the user quits or
// the engine hits a fatal error.
func Run(eng *engine.Engine, maxIter int, fps int) error {
	p := tea.NewProgram(New(eng, maxIter, fps))
	_, err := p.Run()
	return err
}
