// Package boundary computes the bounding square of a body set each
// iteration, seeding from body[0] so the region is well-defined even
// for a single body.
package boundary

import (
	"math"

	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/workpool"
)

// Boundary is an axis-aligned bounding rectangle over all bodies.
type Boundary struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Size returns the side length of the square domain anchored at
// (MinX, MinY): the larger of the rectangle's two extents.
func (b Boundary) Size() float64 {
	return math.Max(b.MaxX-b.MinX, b.MaxY-b.MinY)
}

// seed returns a Boundary collapsed onto a single point, matching the
// "seeded from body[0]" rule before any reduction happens.
func seed(x, y float64) Boundary {
	return Boundary{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

func (b Boundary) merge(o Boundary) Boundary {
	return Boundary{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

func (b *Boundary) include(x, y float64) {
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Reduce computes the boundary over every body in s, seeding from
// body[0] and reducing min/max over the remaining bodies in parallel
// partitions managed by pool. Partial reductions commute (min/max are
// associative), so the per-partition order and interleaving do not
// affect the result, only whether the floating-point reassociation is
// bit-identical run to run — a harmless, explicitly allowed source of
// nondeterminism.
func Reduce(pool *workpool.Pool, s *body.Store) Boundary {
	n := s.Len()
	result := seed(s.Bodies[0].X, s.Bodies[0].Y)
	if n == 0 {
		return result
	}

	ranges := body.EqualRanges(n, pool.Size())
	partials := make([]Boundary, len(ranges))

	tasks := make([]func(), len(ranges))
	for i, r := range ranges {
		idx, rng := i, r
		tasks[idx] = func() {
			partials[idx] = seed(s.Bodies[rng.Start].X, s.Bodies[rng.Start].Y)
			for j := rng.Start + 1; j < rng.End; j++ {
				partials[idx].include(s.Bodies[j].X, s.Bodies[j].Y)
			}
		}
	}
	pool.Go(tasks)

	for _, p := range partials {
		result = result.merge(p)
	}
	return result
}
