// Package frame renders one simulation iteration as an SVG document,
// the frame output collaborator.
package frame

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/boundary"
)

const (
	viewBoxSize = 850
	margin      = 25
	plotSize    = 800
	radius      = 10
)

// Render produces the SVG document for one iteration's body positions,
// scaled into the viewBox using b's extent.
func Render(s *body.Store, b boundary.Boundary) string {
	scale := plotSize / b.Size()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`, viewBoxSize, viewBoxSize)
	sb.WriteByte('\n')

	for _, bd := range s.Bodies {
		cx := (bd.X-b.MinX)*scale + margin
		cy := (bd.Y-b.MinY)*scale + margin
		fmt.Fprintf(&sb, `<circle cx="%f" cy="%f" r="%d" fill="%s"/>`, cx, cy, radius, colorFor(bd.Color))
		sb.WriteByte('\n')
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Filename is the file-opening collaborator: it names the frame file
// for a given iteration inside dir.
func Filename(dir string, iteration int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d.svg", iteration))
}

// WriteFile renders s and writes it to Filename(dir, iteration). Output
// I/O failures here are non-fatal — the caller logs the error and
// continues the run rather than aborting.
func WriteFile(dir string, iteration int, s *body.Store, b boundary.Boundary) error {
	return os.WriteFile(Filename(dir, iteration), []byte(Render(s, b)), 0o644)
}

// colorFor maps a body's colour tag to its SVG fill: 1 is blue
// (galaxy 1), 2 is orange (galaxy 2), anything else (the heavy central
// bodies, colour 0) is black.
func colorFor(tag uint8) string {
	switch tag {
	case 1:
		return "blue"
	case 2:
		return "orange"
	default:
		return "black"
	}
}
