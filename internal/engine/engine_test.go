package engine

import (
	"errors"
	"testing"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero bodies", Config{NumBodies: 0, Iterations: 1, Parallelism: 1, LeafSize: 1}},
		{"negative iterations", Config{NumBodies: 10, Iterations: -1, Parallelism: 1, LeafSize: 1}},
		{"zero parallelism", Config{NumBodies: 10, Iterations: 1, Parallelism: 0, LeafSize: 1}},
		{"negative sector exponent", Config{NumBodies: 10, Iterations: 1, Parallelism: 1, LeafSize: 1, SectorExponent: -1}},
		{"zero leaf size", Config{NumBodies: 10, Iterations: 1, Parallelism: 1, LeafSize: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewBuildsRequestedPopulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBodies = 200
	cfg.Iterations = 0
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if e.Bodies().Len() != 200 {
		t.Errorf("Bodies().Len() = %d, want 200", e.Bodies().Len())
	}
}

func TestDefaultChunkCapGrowsWithPopulation(t *testing.T) {
	small := defaultChunkCap(100, 4)
	large := defaultChunkCap(100000, 4)
	if large <= small {
		t.Errorf("defaultChunkCap(100000,4) = %d, want > defaultChunkCap(100,4) = %d", large, small)
	}
}

func TestRunAdvancesBodiesOverIterations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBodies = 64
	cfg.Iterations = 3
	cfg.SectorExponent = 2
	cfg.Parallelism = 2
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	before := make([]float64, e.Bodies().Len())
	for i, b := range e.Bodies().Bodies {
		before[i] = b.X
	}

	if err := e.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	moved := false
	for i, b := range e.Bodies().Bodies {
		if b.X != before[i] {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("no body moved after 3 iterations")
	}
}

func TestRunWrapsArenaOverflowSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBodies = 64
	cfg.SectorExponent = 1
	cfg.FixedCapacity = 2 // room for a sector root and one body-leaf; a second body in any sector overflows it
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := e.Run(); err == nil {
		t.Fatal("expected an arena overflow error")
	} else if !errors.Is(err, ErrArenaOverflow) {
		t.Errorf("expected ErrArenaOverflow, got %v", err)
	}
}

func TestRunWrapsStackOverflowSentinel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBodies = 64
	cfg.SectorExponent = 1
	cfg.Force.StackLimit = 4
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := e.Run(); err == nil {
		t.Fatal("expected a stack overflow error")
	} else if !errors.Is(err, ErrStackOverflow) {
		t.Errorf("expected ErrStackOverflow, got %v", err)
	}
}

func TestRunWithZeroIterationsIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumBodies = 32
	cfg.Iterations = 0
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	snapshot := make([]float64, e.Bodies().Len())
	for i, b := range e.Bodies().Bodies {
		snapshot[i] = b.X
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, b := range e.Bodies().Bodies {
		if b.X != snapshot[i] {
			t.Fatal("body moved despite zero iterations")
		}
	}
}
