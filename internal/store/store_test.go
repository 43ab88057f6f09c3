package store

import (
	"testing"

	"github.com/go-nbody/galaxysim/internal/engine"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg := engine.DefaultConfig()
	cfg.NumBodies = 64
	trace := []EnergySample{
		{Iteration: 0, Kinetic: 1, Potential: -2, Total: -1},
		{Iteration: 1, Kinetic: 1.1, Potential: -2.05, Total: -0.95},
	}

	runID, err := s.Save(cfg, trace)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.NumBodies != 64 {
		t.Errorf("NumBodies = %d, want 64", meta.NumBodies)
	}
	if meta.StartEnergy != -1 {
		t.Errorf("StartEnergy = %v, want -1", meta.StartEnergy)
	}
	if meta.FinalEnergy != -0.95 {
		t.Errorf("FinalEnergy = %v, want -0.95", meta.FinalEnergy)
	}

	gotTrace, err := s.LoadTrace(runID)
	if err != nil {
		t.Fatalf("LoadTrace failed: %v", err)
	}
	if len(gotTrace) != 2 {
		t.Fatalf("LoadTrace returned %d samples, want 2", len(gotTrace))
	}
	if gotTrace[1].Kinetic != 1.1 {
		t.Errorf("gotTrace[1].Kinetic = %v, want 1.1", gotTrace[1].Kinetic)
	}
}

func TestSaveWithEmptyTraceLeavesZeroEnergies(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	runID, err := s.Save(engine.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if meta.StartEnergy != 0 || meta.FinalEnergy != 0 {
		t.Errorf("expected zero energies for empty trace, got start=%v final=%v", meta.StartEnergy, meta.FinalEnergy)
	}
}

func TestListReturnsAllSavedRuns(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Save(engine.DefaultConfig(), nil); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("List returned %d runs, want 3", len(runs))
	}
}

func TestListOnMissingBaseDirReturnsEmpty(t *testing.T) {
	s := New("/nonexistent/galaxysim-store-path")
	runs, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("List returned %d runs, want 0", len(runs))
	}
}
