// Package sector assigns each body to a cell of the regular S×S grid
// that partitions the simulation square for parallel tree construction.
package sector

import (
	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/boundary"
	"github.com/go-nbody/galaxysim/internal/workpool"
)

// Assign writes each body's Sector field given the domain boundary and
// the per-axis sector count s (S = 2^N from configuration). Runs in
// parallel over the same body partition the boundary reducer used; each
// task mutates only the bodies in its own range, so no synchronization
// is needed.
//
// sectorSide is size/S. A coordinate exactly on the max edge floors to
// index S, which is out of range, so it is clamped down to S-1 — the
// "clamping handles the body that sits exactly on max_x/max_y" rule.
func Assign(pool *workpool.Pool, s *body.Store, b boundary.Boundary, sectorsPerAxis int) {
	n := s.Len()
	if n == 0 {
		return
	}

	size := b.Size()
	sectorSide := size / float64(sectorsPerAxis)

	pool.ForRanges(n, func(start, end int) {
		for i := start; i < end; i++ {
			bd := &s.Bodies[i]
			sx := Index(bd.X, b.MinX, sectorSide, sectorsPerAxis)
			sy := Index(bd.Y, b.MinY, sectorSide, sectorsPerAxis)
			bd.Sector = int32(sx + sectorsPerAxis*sy)
		}
	})
}

// Index computes one axis of a body's sector coordinate: floor((coord -
// min) / side), clamped to [0, sectorsPerAxis-1].
func Index(coord, min, side float64, sectorsPerAxis int) int {
	idx := int((coord - min) / side)
	if idx >= sectorsPerAxis {
		idx = sectorsPerAxis - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
