// Package force implements the Barnes-Hut traversal and the
// symplectic-Euler integrator, folded together per body so the
// per-body force accumulator never needs to outlive one call.
package force

import (
	"fmt"
	"math"

	"github.com/go-nbody/galaxysim/internal/arena"
	"github.com/go-nbody/galaxysim/internal/body"
)

// Default simulation constants, compiled in as the documented defaults. Params
// exists so tests and the CLI's --theta/--delta overrides can vary them
// without touching these.
const (
	G       = 100.0
	Theta   = 0.5
	Epsilon = 1e-5
	Delta   = 0.1
)

// Overflow reports that a traversal's explicit stack grew past its
// budget. This is treated identically to an arena overflow: the whole
// run aborts rather than risk silently truncating long-range
// interactions.
type Overflow struct {
	Limit int
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("force: traversal stack exceeded capacity (limit %d)", e.Limit)
}

// Params bundles the physical constants and the stack-depth budget C.
type Params struct {
	G          float64
	Theta      float64
	Epsilon    float64
	Delta      float64
	StackLimit int
}

// DefaultParams returns the compiled-in default constants.
func DefaultParams() Params {
	return Params{G: G, Theta: Theta, Epsilon: Epsilon, Delta: Delta, StackLimit: 1024}
}

// Traverse descends the tree rooted at root with an explicit LIFO stack,
// accumulating the Barnes-Hut approximate force on target. Apart from
// target itself, the force math reads exclusively from arena quads,
// since the tree already carries body position and mass in its leaf
// nodes.
func Traverse(a *arena.Arena, root int32, target *body.Body, p Params) (fx, fy float64, err error) {
	stack := []int32{root}

	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if q == arena.Null {
			continue
		}
		node := &a.Quads[q]

		switch node.Kind {
		case arena.KindInternal:
			dx := target.X - node.MassX
			dy := target.Y - node.MassY
			d2 := dx*dx + dy*dy
			d := math.Sqrt(d2)

			if d == 0 || node.Size/d >= p.Theta {
				if len(stack) >= p.StackLimit-4 {
					return 0, 0, &Overflow{Limit: p.StackLimit}
				}
				for _, c := range node.Children() {
					if c != arena.Null {
						stack = append(stack, c)
					}
				}
				continue
			}

			f := p.G * target.Mass * node.Mass / d2
			invD := 1 / d
			fx += f * (-dx * invD)
			fy += f * (-dy * invD)

		case arena.KindLeaf:
			for cur := q; cur != arena.Null; cur = a.Quads[cur].NextInLeaf {
				occ := &a.Quads[cur]
				if occ.BodyIndex == target.Index {
					continue
				}
				dx := target.X - occ.MassX
				dy := target.Y - occ.MassY
				d2 := dx*dx + dy*dy
				d := math.Sqrt(d2)
				if d <= p.Epsilon {
					continue
				}
				f := p.G * target.Mass * occ.Mass / d2
				invD := 1 / d
				fx += f * (-dx * invD)
				fy += f * (-dy * invD)
			}
		}
	}

	return fx, fy, nil
}

// Direct computes the exact O(N) pairwise force on bodies[idx] against
// every other body, bypassing the tree entirely. It exists only as the
// reference path for the θ=0 equivalence property; the simulation's hot
// path never calls it.
func Direct(bodies []body.Body, idx uint32, p Params) (fx, fy float64) {
	target := &bodies[idx]
	for i := range bodies {
		if uint32(i) == idx {
			continue
		}
		o := &bodies[i]
		dx := target.X - o.X
		dy := target.Y - o.Y
		d2 := dx*dx + dy*dy
		d := math.Sqrt(d2)
		if d <= p.Epsilon {
			continue
		}
		f := p.G * target.Mass * o.Mass / d2
		invD := 1 / d
		fx += f * (-dx * invD)
		fy += f * (-dy * invD)
	}
	return fx, fy
}

// Integrate applies semi-implicit (symplectic) Euler to b using its
// already-accumulated FX/FY: position advances with the velocity at the
// start of the step, then velocity advances with the fresh force. This
// ordering is load-bearing for long-run energy drift and must not be
// swapped.
func Integrate(b *body.Body, p Params) {
	b.X += b.VX * p.Delta
	b.Y += b.VY * p.Delta
	b.VX += b.FX / b.Mass * p.Delta
	b.VY += b.FY / b.Mass * p.Delta
}

// ComputeRange runs Traverse then Integrate for every body in
// [start,end) of s, writing straight into s.Bodies. Callers dispatch one
// ComputeRange per worker over disjoint ranges; each only ever writes
// its own bodies' force/position/velocity fields, so no coordination is
// needed between concurrent calls.
func ComputeRange(a *arena.Arena, root int32, s *body.Store, start, end int, p Params) error {
	for i := start; i < end; i++ {
		b := &s.Bodies[i]
		fx, fy, err := Traverse(a, root, b, p)
		if err != nil {
			return err
		}
		b.FX, b.FY = fx, fy
		Integrate(b, p)
	}
	return nil
}
