package engine

import (
	"math"

	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/force"
)

// KineticEnergy sums 0.5*m*v^2 over every body.
func KineticEnergy(s *body.Store) float64 {
	var ke float64
	for _, b := range s.Bodies {
		ke += 0.5 * b.Mass * (b.VX*b.VX + b.VY*b.VY)
	}
	return ke
}

// PotentialEnergy computes the exact O(N^2) gravitational potential
// energy, the same pairwise sum force.Direct uses for forces. It serves
// the energy-drift checks and the CLI's energy trace; nothing on the
// simulation's hot path calls it.
func PotentialEnergy(s *body.Store, g float64) float64 {
	var pe float64
	n := len(s.Bodies)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := s.Bodies[i].X - s.Bodies[j].X
			dy := s.Bodies[i].Y - s.Bodies[j].Y
			d := math.Hypot(dx, dy)
			if d <= force.Epsilon {
				continue
			}
			pe -= g * s.Bodies[i].Mass * s.Bodies[j].Mass / d
		}
	}
	return pe
}

// TotalEnergy is kinetic plus potential energy, the quantity the
// galaxy-smoke scenario checks for bounded drift.
func TotalEnergy(s *body.Store, g float64) float64 {
	return KineticEnergy(s) + PotentialEnergy(s, g)
}
