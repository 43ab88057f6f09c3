// Package treebuild implements the iterative, stack-based per-sector
// quadtree builder: for one sector's bodies, build a bounded-leaf-bucket
// quadtree using only that sector's arena chunk.
package treebuild

import (
	"fmt"

	"github.com/go-nbody/galaxysim/internal/arena"
	"github.com/go-nbody/galaxysim/internal/body"
)

// Overflow is returned when a sector build needs more arena capacity or
// more work-stack depth than it was given. It is fatal: the caller
// should abort the whole run rather than commit a partially built tree,
// rather than bubble up as anything short of immediate process
// termination.
type Overflow struct {
	Sector int
	Kind   string // "arena" or "stack"
	Limit  int
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("treebuild: sector %d exceeded %s capacity (limit %d)", e.Sector, e.Kind, e.Limit)
}

// workItem is a pending (parent, child) insertion: child, always a
// body-leaf arena index, needs to be attached somewhere under parent.
type workItem struct {
	Parent int32
	Child  int32
}

// Params bundles the per-sector geometry and limits a build needs.
type Params struct {
	SectorIndex       int // for diagnostics
	SectorX, SectorY  int // grid coordinates of this sector
	MinX, MinY        float64
	SectorSide        float64 // s = domain size / S
	LeafSize          uint32
	StackLimit        int
}

// Build constructs the quadtree for one sector into chunk chunkIdx of a,
// using only bodies named by indices (each a stable index into bodies).
// It returns the arena index of the sector's root on success.
//
// Build touches only a.Quads[base:base+a.ChunkCap] where base =
// a.ChunkBase(chunkIdx); callers running one Build per sector in
// parallel must give each a distinct chunkIdx so their writes never
// overlap.
func Build(a *arena.Arena, chunkIdx int, bodies []body.Body, indices []uint32, p Params) (int32, error) {
	base := int32(a.ChunkBase(chunkIdx))
	capacity := int32(a.ChunkCap)

	root := base
	rootQuad := &a.Quads[root]
	rootQuad.Kind = arena.KindInternal
	rootQuad.CenterX = p.MinX + (float64(p.SectorX)+0.5)*p.SectorSide
	rootQuad.CenterY = p.MinY + (float64(p.SectorY)+0.5)*p.SectorSide
	rootQuad.Size = p.SectorSide
	rootQuad.SW, rootQuad.NW, rootQuad.SE, rootQuad.NE = arena.Null, arena.Null, arena.Null, arena.Null

	next := base + 1
	alloc := func() (int32, error) {
		if next >= base+capacity {
			return 0, &Overflow{Sector: p.SectorIndex, Kind: "arena", Limit: a.ChunkCap}
		}
		idx := next
		next++
		return idx, nil
	}

	var stack []workItem
	push := func(item workItem) error {
		if len(stack) >= p.StackLimit {
			return &Overflow{Sector: p.SectorIndex, Kind: "stack", Limit: p.StackLimit}
		}
		stack = append(stack, item)
		return nil
	}

	for _, bodyIdx := range indices {
		b := &bodies[bodyIdx]

		leafIdx, err := alloc()
		if err != nil {
			return 0, err
		}
		leaf := &a.Quads[leafIdx]
		leaf.Kind = arena.KindLeaf
		leaf.MassX, leaf.MassY = b.X, b.Y
		leaf.Mass = b.Mass
		leaf.Total = 1
		leaf.BodyIndex = bodyIdx
		leaf.LeafCount = 0
		leaf.NextInLeaf = arena.Null

		if err := push(workItem{Parent: root, Child: leafIdx}); err != nil {
			return 0, err
		}

		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			parent := &a.Quads[item.Parent]
			child := &a.Quads[item.Child]

			quadrant := arena.ClassifyQuadrant(child.MassX, child.MassY, parent.CenterX, parent.CenterY)
			slot := parent.ChildLink(quadrant)

			switch {
			case *slot == arena.Null:
				*slot = item.Child
				child.LeafCount = 1

			case a.Quads[*slot].Kind == arena.KindLeaf && a.Quads[*slot].LeafCount < p.LeafSize:
				occIdx := *slot
				child.LeafCount = a.Quads[occIdx].LeafCount + 1
				child.NextInLeaf = occIdx
				*slot = item.Child

			case a.Quads[*slot].Kind == arena.KindLeaf && a.Quads[*slot].LeafCount == p.LeafSize:
				occIdx := *slot

				var oldBodies []int32
				for cur := occIdx; cur != arena.Null; {
					oldBodies = append(oldBodies, cur)
					nxt := a.Quads[cur].NextInLeaf
					a.Quads[cur].NextInLeaf = arena.Null
					a.Quads[cur].LeafCount = 0
					cur = nxt
				}

				newInternalIdx, err := alloc()
				if err != nil {
					return 0, err
				}
				cx, cy := arena.ChildCenter(parent.CenterX, parent.CenterY, parent.Size, quadrant)
				newInternal := &a.Quads[newInternalIdx]
				newInternal.Kind = arena.KindInternal
				newInternal.CenterX, newInternal.CenterY = cx, cy
				newInternal.Size = parent.Size / 2
				newInternal.SW, newInternal.NW, newInternal.SE, newInternal.NE = arena.Null, arena.Null, arena.Null, arena.Null

				*slot = newInternalIdx

				for _, ob := range oldBodies {
					if err := push(workItem{Parent: newInternalIdx, Child: ob}); err != nil {
						return 0, err
					}
				}
				if err := push(workItem{Parent: newInternalIdx, Child: item.Child}); err != nil {
					return 0, err
				}

			default: // occupied by an internal node
				if err := push(workItem{Parent: *slot, Child: item.Child}); err != nil {
					return 0, err
				}
			}

			parent.AccumulateBodyMass(child.Mass, child.MassX, child.MassY)
		}
	}

	return root, nil
}

// CountNodes runs the same build against a scratch arena sized to
// bound and reports how many nodes were actually allocated, for the
// optional arena-sizing preflight. It never mutates the caller's real
// arena.
func CountNodes(bodies []body.Body, indices []uint32, p Params, bound int) (int, error) {
	scratch := arena.New(1, bound)
	_, err := Build(scratch, 0, bodies, indices, p)
	if err != nil {
		return 0, err
	}
	used := 0
	for _, q := range scratch.Quads {
		if q.Kind != arena.KindEmpty {
			used++
		}
	}
	return used, nil
}
