// Package engine holds the orchestrator that sequences one galaxysim
// run: the per-iteration pipeline, from boundary
// reduction through force integration, with a barrier between every
// phase.
package engine

import (
	"fmt"
	"math"
	"os"

	"github.com/go-nbody/galaxysim/internal/arena"
	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/boundary"
	"github.com/go-nbody/galaxysim/internal/force"
	"github.com/go-nbody/galaxysim/internal/frame"
	"github.com/go-nbody/galaxysim/internal/galaxy"
	"github.com/go-nbody/galaxysim/internal/merge"
	"github.com/go-nbody/galaxysim/internal/sector"
	"github.com/go-nbody/galaxysim/internal/treebuild"
	"github.com/go-nbody/galaxysim/internal/workpool"
)

// Config holds every value the CLI surface exposes, plus
// the ambient Preflight toggle.
type Config struct {
	NumBodies      int    // -b
	Seed           uint64 // -s
	Iterations     int    // -i
	Parallelism    int    // -p
	SectorExponent int    // -N, S = 2^SectorExponent
	LeafSize       uint32 // -l
	FixedCapacity  int    // -x, <0 means "compute"
	OutputDir      string // -o, empty means no frames
	Verbose        bool   // -v

	// Preflight runs a counting pass per sector before the real build to
	// tighten the arena capacity estimate. Off by default: it doubles
	// per-sector build cost.
	Preflight bool

	Force force.Params
}

// DefaultConfig returns the documented flag defaults.
func DefaultConfig() Config {
	return Config{
		NumBodies:      16384,
		Seed:           213,
		Iterations:     10,
		Parallelism:    8,
		SectorExponent: 4,
		LeafSize:       32,
		FixedCapacity:  -1,
		Force:          force.DefaultParams(),
	}
}

func (c Config) validate() error {
	if c.NumBodies < 1 {
		return fmt.Errorf("%w: -b must be >= 1, got %d", ErrInvalidConfig, c.NumBodies)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: -i must be >= 0, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: -p must be >= 1, got %d", ErrInvalidConfig, c.Parallelism)
	}
	if c.SectorExponent < 0 {
		return fmt.Errorf("%w: -N must be >= 0, got %d", ErrInvalidConfig, c.SectorExponent)
	}
	if c.LeafSize < 1 {
		return fmt.Errorf("%w: -l must be >= 1, got %d", ErrInvalidConfig, c.LeafSize)
	}
	return nil
}

// Engine holds the live state of one run: configuration, the body
// store, the reusable quad arena, and the worker pool every parallel
// phase dispatches through.
type Engine struct {
	cfg   Config
	pool  *workpool.Pool
	store *body.Store
	arena *arena.Arena

	sectorsPerAxis int
	chunkCap       int
	iter           int
}

// New validates cfg and builds the initial two-galaxy body population.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	S := 1 << cfg.SectorExponent
	chunkCap := cfg.FixedCapacity
	if chunkCap < 0 {
		chunkCap = defaultChunkCap(cfg.NumBodies, S)
	}

	e := &Engine{
		cfg:            cfg,
		pool:           workpool.New(cfg.Parallelism),
		store:          galaxy.Generate(cfg.NumBodies, cfg.Seed),
		arena:          arena.New(S*S+1, chunkCap),
		sectorsPerAxis: S,
		chunkCap:       chunkCap,
	}
	return e, nil
}

// NewWithBodies is New for callers that already have an initial
// population in hand instead of wanting galaxy.Generate's recipe — the
// presets command and the scenario tests use this to pin down exact
// starting positions and velocities.
func NewWithBodies(cfg Config, bodies []body.Body) (*Engine, error) {
	cfg.NumBodies = len(bodies)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	S := 1 << cfg.SectorExponent
	chunkCap := cfg.FixedCapacity
	if chunkCap < 0 {
		chunkCap = defaultChunkCap(cfg.NumBodies, S)
	}

	e := &Engine{
		cfg:            cfg,
		pool:           workpool.New(cfg.Parallelism),
		store:          &body.Store{Bodies: bodies},
		arena:          arena.New(S*S+1, chunkCap),
		sectorsPerAxis: S,
		chunkCap:       chunkCap,
	}
	return e, nil
}

// defaultChunkCap picks a per-sector capacity from the analytic Σ4^k
// bound, sized to the average body load per sector times 8 plus 64 slots
// as a margin for clustering, for the computed sizing mode.
func defaultChunkCap(numBodies, sectorsPerAxis int) int {
	avgPerSector := numBodies/(sectorsPerAxis*sectorsPerAxis) + 1
	loaded := avgPerSector*8 + 64
	depth := 1
	for arena.BoundAnalytic(depth) < loaded {
		depth++
	}
	return arena.BoundAnalytic(depth)
}

// Bodies exposes the live body store, mainly for reporting and tests.
func (e *Engine) Bodies() *body.Store { return e.store }

// Config returns the configuration this engine was built with, mainly
// for reporting (the CLI's energy trace and run summary read Force.G
// and Iterations off of it).
func (e *Engine) Config() Config { return e.cfg }

// Run executes cfg.Iterations steps of the pipeline, writing a frame per
// iteration to cfg.OutputDir when set. It returns on the first fatal
// (arena/stack overflow) error; output I/O errors are logged to stderr
// and the run continues.
func (e *Engine) Run() error {
	for i := 0; i < e.cfg.Iterations; i++ {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the simulation by exactly one iteration and reports its
// own index via Iteration afterward. Run is a loop around Step; the
// energy-trace recorder and the live viewer call Step directly so they
// can observe the body store between iterations.
func (e *Engine) Step() error {
	if err := e.step(e.iter); err != nil {
		return err
	}
	if e.cfg.Verbose {
		fmt.Fprintf(os.Stdout, "iteration %d: %d bodies\n", e.iter, e.store.Len())
	}
	e.iter++
	return nil
}

// Iteration reports how many Step calls this engine has completed.
func (e *Engine) Iteration() int { return e.iter }

func (e *Engine) step(iter int) error {
	e.store.ResetForces()

	b := boundary.Reduce(e.pool, e.store)
	size := b.Size()
	S := e.sectorsPerAxis

	sector.Assign(e.pool, e.store, b, S)
	partitions := e.store.SectorPartition(S * S)

	if e.cfg.Preflight {
		e.runPreflight(b, size, partitions)
	}

	e.arena.Reset()

	roots := make([]int32, S*S)
	buildErrs := make([]error, S*S)
	tasks := make([]func(), S*S)
	sectorSide := size / float64(S)
	for k := 0; k < S*S; k++ {
		k := k
		sx, sy := k%S, k/S
		tasks[k] = func() {
			root, err := treebuild.Build(e.arena, k, e.store.Bodies, partitions[k], treebuild.Params{
				SectorIndex: k,
				SectorX:     sx,
				SectorY:     sy,
				MinX:        b.MinX,
				MinY:        b.MinY,
				SectorSide:  sectorSide,
				LeafSize:    e.cfg.LeafSize,
				StackLimit:  1024,
			})
			if err != nil {
				buildErrs[k] = &RunError{Iteration: iter, Sector: k, Wrapped: wrapOverflow(err)}
				return
			}
			roots[k] = root
		}
	}
	e.pool.Go(tasks)
	for _, err := range buildErrs {
		if err != nil {
			return err
		}
	}

	mergedRoot, err := merge.Merge(e.arena, roots, merge.Params{
		SectorsPerAxis: S,
		SizeSim:        size,
		MinX:           b.MinX,
		MinY:           b.MinY,
	})
	if err != nil {
		return &RunError{Iteration: iter, Sector: -1, Wrapped: wrapOverflow(err)}
	}

	ranges := body.EqualRanges(e.store.Len(), e.cfg.Parallelism)
	forceErrs := make([]error, len(ranges))
	forceTasks := make([]func(), len(ranges))
	for i, r := range ranges {
		i, r := i, r
		forceTasks[i] = func() {
			if err := force.ComputeRange(e.arena, mergedRoot, e.store, r.Start, r.End, e.cfg.Force); err != nil {
				forceErrs[i] = &RunError{Iteration: iter, Sector: -1, Wrapped: wrapOverflow(err)}
			}
		}
	}
	e.pool.Go(forceTasks)
	for _, err := range forceErrs {
		if err != nil {
			return err
		}
	}

	if e.cfg.OutputDir != "" {
		if err := frame.WriteFile(e.cfg.OutputDir, iter, e.store, b); err != nil {
			fmt.Fprintln(os.Stderr, "galaxysim: frame write failed:", err)
		}
	}

	return nil
}

// runPreflight scans each sector with the scratch-only counting builder
// and grows the arena if any sector would overflow the current chunk
// capacity. Rare in practice; the analytic default already covers
// uniform and lightly clustered distributions.
func (e *Engine) runPreflight(b boundary.Boundary, size float64, partitions [][]uint32) {
	S := e.sectorsPerAxis
	sectorSide := size / float64(S)
	needed := e.chunkCap

	for k := 0; k < S*S; k++ {
		sx, sy := k%S, k/S
		count, err := treebuild.CountNodes(e.store.Bodies, partitions[k], treebuild.Params{
			SectorIndex: k,
			SectorX:     sx,
			SectorY:     sy,
			MinX:        b.MinX,
			MinY:        b.MinY,
			SectorSide:  sectorSide,
			LeafSize:    e.cfg.LeafSize,
			StackLimit:  1024,
		}, e.chunkCap*4)
		if err != nil {
			continue // scratch build overflowed its own generous bound; fall back to the real build's diagnostic
		}
		if count > needed {
			needed = count
		}
	}

	if needed > e.chunkCap {
		grown := int(math.Ceil(float64(needed) * 1.1))
		e.chunkCap = grown
		e.arena = arena.New(S*S+1, grown)
	}
}
