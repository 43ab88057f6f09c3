// Package merge combines the S² independent sector quadtrees built by
// treebuild into one tree spanning the whole simulated square, by pairing
// adjacent sector roots into synthetic parents for log2(S) levels.
package merge

import (
	"fmt"

	"github.com/go-nbody/galaxysim/internal/arena"
)

// Overflow reports that the merge chunk ran out of room for synthetic
// nodes. Sequential and rare in practice (O(S²) synthetic nodes total),
// but the merge chunk is sized like any other and can still be
// undersized by a bad -x override.
type Overflow struct {
	Limit int
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("merge: exceeded merge-chunk capacity (limit %d)", e.Limit)
}

// Params bundles the grid geometry the merge needs to place synthetic
// node centres and sizes.
type Params struct {
	SectorsPerAxis int // S
	SizeSim        float64
	MinX, MinY     float64
}

// Merge folds S² sector roots (indexed sx + S*sy, matching sector.Assign)
// into a single global root written into a's merge chunk, and returns
// that root's arena index.
//
// roots[k] is Null for a sector with no bodies, or a sector-chunk root
// index whose Total may still be zero (a root with no bodies allocated
// but not attached to anything above it).
func Merge(a *arena.Arena, roots []int32, p Params) (int32, error) {
	base := int32(a.ChunkBase(a.MergeChunk()))
	capacity := int32(a.ChunkCap)
	next := base

	alloc := func() (int32, error) {
		if next >= base+capacity {
			return 0, &Overflow{Limit: a.ChunkCap}
		}
		idx := next
		next++
		return idx, nil
	}

	level := p.SectorsPerAxis
	grid := make([]int32, level*level)
	for sy := 0; sy < level; sy++ {
		for sx := 0; sx < level; sx++ {
			k := sx + level*sy
			root := roots[k]
			if root != arena.Null && a.Quads[root].Total > 0 {
				grid[k] = root
			} else {
				grid[k] = arena.Null
			}
		}
	}

	for level > 1 {
		nextLevel := level / 2
		sizeLevel := p.SizeSim / float64(nextLevel)
		newGrid := make([]int32, nextLevel*nextLevel)

		for j := 0; j < nextLevel; j++ {
			for i := 0; i < nextLevel; i++ {
				idx, err := alloc()
				if err != nil {
					return 0, err
				}
				node := &a.Quads[idx]
				node.Kind = arena.KindInternal
				node.Size = sizeLevel
				node.CenterX = p.MinX + sizeLevel*(float64(i)+0.5)
				node.CenterY = p.MinY + sizeLevel*(float64(j)+0.5)
				node.SW, node.NW, node.SE, node.NE = arena.Null, arena.Null, arena.Null, arena.Null

				subcells := []struct {
					x, y int
					link *int32
				}{
					{2 * i, 2 * j, &node.SW},
					{2 * i, 2*j + 1, &node.NW},
					{2*i + 1, 2 * j, &node.SE},
					{2*i + 1, 2*j + 1, &node.NE},
				}
				for _, sc := range subcells {
					child := grid[sc.x+level*sc.y]
					if child == arena.Null {
						continue
					}
					*sc.link = child
					cq := a.Quads[child]
					node.AccumulateChildMass(cq.Mass, cq.MassX, cq.MassY, cq.Total)
				}

				if node.Total > 0 {
					newGrid[i+nextLevel*j] = idx
				} else {
					newGrid[i+nextLevel*j] = arena.Null
				}
			}
		}

		grid = newGrid
		level = nextLevel
	}

	return grid[0], nil
}
