// Package config loads default CLI settings from an optional YAML file,
// letting explicit flags on the command line override them. Grounded on
// spec.md §6's flag surface; the YAML format itself has no original_source
// analog (the Python driver reads only argparse flags) and is this repo's
// ambient-stack addition (SPEC_FULL.md §3).
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds defaults for racegen's CLI flags.
type Config struct {
	LTSminDir  string `yaml:"ltsmin"`
	PinsStirDir string `yaml:"pinsStir"`
	Encoding   string `yaml:"encoding"`
	Quiet      bool   `yaml:"quiet"`
}

// Load reads a YAML config file from path. An empty path is not an
// error; it returns a zero Config so flag defaults apply unchanged. A
// non-empty path naming a file that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	return cfg, nil
}
