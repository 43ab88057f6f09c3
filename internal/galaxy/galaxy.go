// Package galaxy implements the initialization collaborator: the
// two-galaxy recipe that produces the initial body population a run
// starts from.
package galaxy

import (
	"math"
	"math/rand/v2"

	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/force"
)

// radii in simulation units for the random orbital spread of each
// galaxy.
const (
	radiusGalaxy1 = 300.0
	radiusGalaxy2 = 350.0
)

// Generate builds the initial two-galaxy body population: num1 = num/8
// bodies around (0,0) and the remainder around (-1800,-1200), each
// galaxy seeded with its own heavy central body. Stable indices are
// contiguous and assigned by body.New.
func Generate(num int, seed uint64) *body.Store {
	num1 := num / 8
	num2 := num - num1

	s := body.New(num)
	rng := rand.New(rand.NewPCG(seed, seed))

	populateGalaxy(s, 0, num1, 0, 0, radiusGalaxy1, 1, rng)
	populateGalaxy(s, num1, num2, -1800, -1200, radiusGalaxy2, 2, rng)

	return s
}

// populateGalaxy fills count bodies starting at s.Bodies[start]: the
// first is the galaxy's heavy, stationary centre; the rest orbit it at a
// random angle and radius with a tangential speed chosen so the galaxy
// holds together under its own central mass.
func populateGalaxy(s *body.Store, start, count int, cx, cy, r float64, colorTag uint8, rng *rand.Rand) {
	if count == 0 {
		return
	}

	central := &s.Bodies[start]
	central.X, central.Y = cx, cy
	central.Mass = float64(count)
	central.Color = 0

	for i := 1; i < count; i++ {
		b := &s.Bodies[start+i]

		theta := rng.Float64() * 2 * math.Pi
		u := rng.Float64()
		radius := 25 + r*u

		b.X = cx + radius*math.Cos(theta)
		b.Y = cy + radius*math.Sin(theta)

		speed := math.Sqrt(force.G*float64(count)/radius + force.G*1.5*float64(count)*radius*radius/(r*r*r))
		b.VX = -speed * math.Sin(theta)
		b.VY = speed * math.Cos(theta)

		b.Mass = 1 + rng.Float64()
		b.Color = colorTag
	}
}
