package engine

import (
	"errors"
	"fmt"

	"github.com/go-nbody/galaxysim/internal/force"
	"github.com/go-nbody/galaxysim/internal/merge"
	"github.com/go-nbody/galaxysim/internal/treebuild"
)

// Sentinel error kinds for the three ways a run can fail.
var (
	// ErrInvalidConfig indicates a configuration value the orchestrator
	// refuses to run with (negative counts, a leaf size below 1, ...).
	ErrInvalidConfig = errors.New("engine: invalid configuration")

	// ErrArenaOverflow indicates a sector tree build needed more nodes
	// than its chunk had room for.
	ErrArenaOverflow = errors.New("engine: arena overflow")

	// ErrStackOverflow indicates a tree build or force traversal needed
	// more explicit-stack depth than its budget allowed.
	ErrStackOverflow = errors.New("engine: stack overflow")
)

// RunError wraps one of the sentinels above with the iteration and
// (where applicable) sector it happened in.
type RunError struct {
	Iteration int
	Sector    int // -1 when not sector-specific
	Wrapped   error
}

func (e *RunError) Error() string {
	if e.Sector >= 0 {
		return fmt.Sprintf("iteration %d, sector %d: %v", e.Iteration, e.Sector, e.Wrapped)
	}
	return fmt.Sprintf("iteration %d: %v", e.Iteration, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}

// wrapOverflow classifies a raw treebuild/merge/force overflow by its
// kind and wraps it behind the matching sentinel, so
// errors.Is(err, ErrArenaOverflow) / errors.Is(err, ErrStackOverflow)
// resolve correctly through a RunError's Unwrap. treebuild's Overflow
// carries its own Kind ("arena" or "stack"); merge only ever overflows
// its node arena, and force's traversal only ever overflows its stack.
func wrapOverflow(err error) error {
	var t *treebuild.Overflow
	if errors.As(err, &t) {
		if t.Kind == "stack" {
			return fmt.Errorf("%w: %w", ErrStackOverflow, err)
		}
		return fmt.Errorf("%w: %w", ErrArenaOverflow, err)
	}

	var m *merge.Overflow
	if errors.As(err, &m) {
		return fmt.Errorf("%w: %w", ErrArenaOverflow, err)
	}

	var f *force.Overflow
	if errors.As(err, &f) {
		return fmt.Errorf("%w: %w", ErrStackOverflow, err)
	}

	return err
}
