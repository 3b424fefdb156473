package hamlsh

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/hamlsh/family"
)

// Config holds the index parameters.
type Config struct {
	// R is the near radius. Must be positive.
	R int `yaml:"r" json:"r"`

	// C is the approximation factor. Must be positive.
	C float64 `yaml:"c" json:"c"`

	// Family selects the hash family. The zero value is FamilyAuto.
	Family family.Kind `yaml:"family" json:"family"`

	// Delta is the failure probability of the randomized family, in (0,1).
	// 0 derives the number of tables as n^(1/c) instead.
	Delta float64 `yaml:"delta,omitempty" json:"delta,omitempty"`

	// Seed makes hash function construction reproducible. When nil a seed is
	// chosen from the clock and reported by Index.Seed.
	Seed *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Hash family kinds accepted in Config.Family.
const (
	FamilyAuto       = family.Auto
	FamilyA1         = family.A1
	FamilyA2         = family.A2
	FamilyRandomized = family.RandomizedK
)

// Validate checks the fields that do not depend on the dataset.
func (c Config) Validate() error {
	if c.R <= 0 {
		return fmt.Errorf("%w: r must be positive, got %d", ErrInvalidConfig, c.R)
	}
	if !(c.C > 0) || math.IsInf(c.C, 0) {
		return fmt.Errorf("%w: c must be a positive number, got %v", ErrInvalidConfig, c.C)
	}
	switch c.Family {
	case family.Auto, family.A1, family.A2, family.RandomizedK:
	default:
		return fmt.Errorf("%w: unknown family %v", ErrInvalidConfig, c.Family)
	}
	if c.Delta != 0 && !(c.Delta > 0 && c.Delta < 1) {
		return fmt.Errorf("%w: delta must be in (0,1), got %v", ErrInvalidConfig, c.Delta)
	}
	return nil
}

// WithSeed returns a copy of c with a fixed seed.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = &seed
	return c
}

// ParseConfig decodes a YAML configuration and validates it.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
