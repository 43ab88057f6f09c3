package main

import (
	"math"

	"github.com/go-nbody/galaxysim/internal/body"
)

// preset is a named, hand-specified starting population used to
// exercise a known piece of physics instead of the procedural galaxy
// generator — the same configurations the engine's scenario suite
// checks, exposed here for interactive/manual runs.
type preset struct {
	name        string
	description string
	sectorExp   int
	bodies      func() []body.Body
}

var presets = []preset{
	{
		name:        "two-body",
		description: "two equal masses in a circular orbit about their common centre",
		sectorExp:   0,
		bodies: func() []body.Body {
			speed := math.Sqrt(100.0 / 4)
			return []body.Body{
				{X: 1, Y: 0, Mass: 1, Index: 0, VY: speed},
				{X: -1, Y: 0, Mass: 1, Index: 1, VY: -speed},
			}
		},
	},
	{
		name:        "colocated",
		description: "two bodies at the same point, exercising the epsilon-softened zero-distance case",
		sectorExp:   0,
		bodies: func() []body.Body {
			return []body.Body{
				{X: 5, Y: 5, Mass: 2, Index: 0},
				{X: 5, Y: 5, Mass: 2, Index: 1},
			}
		},
	},
	{
		name:        "four-corner",
		description: "four equal masses at the corners of a square, centre of mass fixed at the origin",
		sectorExp:   0,
		bodies: func() []body.Body {
			return []body.Body{
				{X: -0.5, Y: -0.5, Mass: 1, Index: 0},
				{X: -0.5, Y: 0.5, Mass: 1, Index: 1},
				{X: 0.5, Y: -0.5, Mass: 1, Index: 2},
				{X: 0.5, Y: 0.5, Mass: 1, Index: 3},
			}
		},
	},
}

func findPreset(name string) *preset {
	for i := range presets {
		if presets[i].name == name {
			return &presets[i]
		}
	}
	return nil
}
