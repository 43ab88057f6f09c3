package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-nbody/galaxysim/internal/engine"
)

// fileConfig mirrors the subset of engine.Config that a run can source
// from a YAML file via -c/--config. CLI flags that were explicitly set
// override the matching fileConfig value.
type fileConfig struct {
	NumBodies      int     `yaml:"num_bodies"`
	Seed           uint64  `yaml:"seed"`
	Iterations     int     `yaml:"iterations"`
	Parallelism    int     `yaml:"parallelism"`
	SectorExponent int     `yaml:"sector_exponent"`
	LeafSize       uint32  `yaml:"leaf_size"`
	FixedCapacity  int     `yaml:"fixed_capacity"`
	OutputDir      string  `yaml:"output_dir"`
	Theta          float64 `yaml:"theta"`
	Delta          float64 `yaml:"delta"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyTo overlays non-zero fileConfig values onto an engine.Config,
// leaving fields the file didn't set at whatever the CLI flags already
// put there.
func (fc *fileConfig) applyTo(cfg *engine.Config, changed func(flag string) bool) {
	if fc.NumBodies != 0 && !changed("bodies") {
		cfg.NumBodies = fc.NumBodies
	}
	if fc.Seed != 0 && !changed("seed") {
		cfg.Seed = fc.Seed
	}
	if fc.Iterations != 0 && !changed("iterations") {
		cfg.Iterations = fc.Iterations
	}
	if fc.Parallelism != 0 && !changed("parallelism") {
		cfg.Parallelism = fc.Parallelism
	}
	if fc.SectorExponent != 0 && !changed("sector-exp") {
		cfg.SectorExponent = fc.SectorExponent
	}
	if fc.LeafSize != 0 && !changed("leaf-size") {
		cfg.LeafSize = fc.LeafSize
	}
	if fc.FixedCapacity != 0 && !changed("fixed-capacity") {
		cfg.FixedCapacity = fc.FixedCapacity
	}
	if fc.OutputDir != "" && !changed("out") {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.Theta != 0 && !changed("theta") {
		cfg.Force.Theta = fc.Theta
	}
	if fc.Delta != 0 && !changed("delta") {
		cfg.Force.Delta = fc.Delta
	}
}
