// Package store persists one galaxysim run per directory: a
// metadata.json describing the configuration and final energy, and an
// energy.csv trace of kinetic/potential/total energy per iteration.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-nbody/galaxysim/internal/engine"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is the persisted record of one run's configuration and
// outcome.
type RunMetadata struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Seed           uint64    `json:"seed"`
	NumBodies      int       `json:"num_bodies"`
	Iterations     int       `json:"iterations"`
	Parallelism    int       `json:"parallelism"`
	SectorExponent int       `json:"sector_exponent"`
	LeafSize       uint32    `json:"leaf_size"`
	StartEnergy    float64   `json:"start_energy"`
	FinalEnergy    float64   `json:"final_energy"`
}

// EnergySample is one row of the energy trace.
type EnergySample struct {
	Iteration int
	Kinetic   float64
	Potential float64
	Total     float64
}

// Save writes metadata.json and energy.csv for one run under a fresh
// per-run subdirectory of baseDir, returning the run's ID.
func (s *Store) Save(cfg engine.Config, trace []EnergySample) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	var startEnergy, finalEnergy float64
	if len(trace) > 0 {
		startEnergy = trace[0].Total
		finalEnergy = trace[len(trace)-1].Total
	}

	meta := RunMetadata{
		ID:             runID,
		Timestamp:      time.Now(),
		Seed:           cfg.Seed,
		NumBodies:      cfg.NumBodies,
		Iterations:     cfg.Iterations,
		Parallelism:    cfg.Parallelism,
		SectorExponent: cfg.SectorExponent,
		LeafSize:       cfg.LeafSize,
		StartEnergy:    startEnergy,
		FinalEnergy:    finalEnergy,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "energy.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"iteration", "kinetic", "potential", "total"}); err != nil {
		return "", err
	}
	for _, sample := range trace {
		row := []string{
			strconv.Itoa(sample.Iteration),
			strconv.FormatFloat(sample.Kinetic, 'f', 6, 64),
			strconv.FormatFloat(sample.Potential, 'f', 6, 64),
			strconv.FormatFloat(sample.Total, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the metadata of every saved run, skipping entries whose
// metadata.json is missing or unreadable.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load reads back one run's metadata.json.
func (s *Store) Load(runID string) (RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return RunMetadata{}, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return RunMetadata{}, err
	}
	return meta, nil
}

// LoadTrace reads back one run's energy.csv.
func (s *Store) LoadTrace(runID string) ([]EnergySample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "energy.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, nil
	}

	trace := make([]EnergySample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 4 {
			continue
		}
		iteration, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, err
		}
		kinetic, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, err
		}
		potential, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, err
		}
		total, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, err
		}
		trace = append(trace, EnergySample{Iteration: iteration, Kinetic: kinetic, Potential: potential, Total: total})
	}
	return trace, nil
}
