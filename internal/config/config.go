// Package config defines the YAML schema of a simulation run, its calibrated
// defaults and validation.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/cellsim/internal/core/agent"
	"github.com/zeusync/cellsim/internal/core/field"
	"github.com/zeusync/cellsim/internal/core/motility"
	"github.com/zeusync/cellsim/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	PlacementRandom    = "random"
	PlacementPositions = "positions"
)

type Config struct {
	Seed      uint64  `yaml:"seed"`
	TimeSlice float64 `yaml:"time_slice"`
	// EndTime is the simulated time at which RunUntilEnd stops.
	EndTime  float64 `yaml:"end_time"`
	MaxSpeed float64 `yaml:"max_speed"`
	LogLevel string  `yaml:"log_level"`

	Field field.Config `yaml:"field"`
	Types []TypeConfig `yaml:"types"`

	// SampleEvery is the tick interval of the population time series.
	SampleEvery int          `yaml:"sample_every"`
	Stream      StreamConfig `yaml:"stream"`

	Replicates int `yaml:"replicates"`
	Workers    int `yaml:"workers"`
}

type TypeConfig struct {
	Kind     string  `yaml:"kind"`
	Count    int     `yaml:"count"`
	Diameter float64 `yaml:"diameter"`
	// Placement is "random" (default) or "positions".
	Placement string       `yaml:"placement"`
	Positions [][3]float64 `yaml:"positions"`

	Boundary      string  `yaml:"boundary"`
	BoundarySpeed float64 `yaml:"boundary_speed"`
	RespawnKind   string  `yaml:"respawn_kind"`

	Predators        []string `yaml:"predators"`
	ReplaceOnConsume bool     `yaml:"replace_on_consume"`
	StuckRecovery    bool     `yaml:"stuck_recovery"`

	Speed    *LogNormalConfig `yaml:"speed"`
	Meander  MeanderConfig    `yaml:"meander"`
	Paradigm motility.Config  `yaml:"paradigm"`
}

type LogNormalConfig struct {
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

type MeanderConfig struct {
	Enabled bool    `yaml:"enabled"`
	Mean    float64 `yaml:"mean"`
	Std     float64 `yaml:"std"`
}

type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// Every is the tick interval between broadcast frames.
	Every int `yaml:"every"`
}

// Load decodes YAML from r over Default, so omitted keys keep their default
// values, and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Settings derives the motility settings shared by every paradigm.
func (c *Config) Settings() motility.Settings {
	return motility.Settings{TimeSlice: c.TimeSlice, MaxSpeed: c.MaxSpeed}
}

// Steps is the number of ticks needed to reach EndTime.
func (c *Config) Steps() int {
	if c.EndTime <= 0 {
		return 0
	}
	return int(math.Ceil(c.EndTime/c.TimeSlice - 1e-9))
}

func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if !(c.TimeSlice > 0) || math.IsInf(c.TimeSlice, 0) {
		return invalid("time_slice must be positive")
	}
	if !(c.MaxSpeed > 0) || math.IsInf(c.MaxSpeed, 0) {
		return invalid("max_speed must be positive")
	}
	if c.EndTime < 0 {
		return invalid("end_time must be non-negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Field.Validate(); err != nil {
		return fmt.Errorf("%w: field: %w", ErrInvalidConfig, err)
	}
	if c.SampleEvery < 0 {
		return invalid("sample_every must be non-negative")
	}
	if c.Stream.Enabled && (c.Stream.Addr == "" || c.Stream.Every <= 0) {
		return invalid("stream needs an addr and a positive every")
	}
	if c.Replicates < 0 || c.Workers < 0 {
		return invalid("replicates and workers must be non-negative")
	}
	if len(c.Types) == 0 {
		return invalid("at least one type is required")
	}

	kinds := make([]agent.Kind, 0, len(c.Types))
	for i := range c.Types {
		t := &c.Types[i]
		k, err := agent.ParseKind(t.Kind)
		if err != nil {
			return fmt.Errorf("%w: types[%d]: %w", ErrInvalidConfig, i, err)
		}
		if slices.Contains(kinds, k) {
			return invalid("types[%d]: kind %s configured twice", i, k)
		}
		kinds = append(kinds, k)
		if err := t.validate(); err != nil {
			return fmt.Errorf("%w: types[%d] %s: %w", ErrInvalidConfig, i, k, err)
		}
	}
	for i, t := range c.Types {
		refs := append([]string{}, t.Predators...)
		if t.RespawnKind != "" {
			refs = append(refs, t.RespawnKind)
		}
		for _, ref := range refs {
			k, err := agent.ParseKind(ref)
			if err != nil {
				return fmt.Errorf("%w: types[%d]: %w", ErrInvalidConfig, i, err)
			}
			if !slices.Contains(kinds, k) {
				return invalid("types[%d]: %s is not a configured kind", i, k)
			}
		}
	}
	return nil
}

func (t *TypeConfig) validate() error {
	if t.Count < 0 {
		return errors.New("count must be non-negative")
	}
	if !(t.Diameter > 0) {
		return errors.New("diameter must be positive")
	}
	switch t.Placement {
	case "", PlacementRandom:
	case PlacementPositions:
		if len(t.Positions) < t.Count {
			return fmt.Errorf("%d positions given for count %d", len(t.Positions), t.Count)
		}
	default:
		return fmt.Errorf("unknown placement %q", t.Placement)
	}
	if _, err := agent.ParseBoundary(t.Boundary); err != nil {
		return err
	}
	if t.BoundarySpeed < 0 {
		return errors.New("boundary_speed must be non-negative")
	}
	if t.Speed != nil && t.Speed.Sigma < 0 {
		return errors.New("speed sigma must be non-negative")
	}
	if t.Meander.Enabled && t.Meander.Std < 0 {
		return errors.New("meander std must be non-negative")
	}
	return t.Paradigm.Validate()
}

// AgentType resolves the kind names of t into an agent.Type bound to factory.
// The receiver must have passed Validate.
func (t *TypeConfig) AgentType(factory motility.Factory) (*agent.Type, error) {
	kind, err := agent.ParseKind(t.Kind)
	if err != nil {
		return nil, err
	}
	boundary, err := agent.ParseBoundary(t.Boundary)
	if err != nil {
		return nil, err
	}
	typ := &agent.Type{
		Kind:             kind,
		Diameter:         t.Diameter,
		Paradigm:         factory,
		Boundary:         boundary,
		BoundarySpeed:    t.BoundarySpeed,
		ReplaceOnConsume: t.ReplaceOnConsume,
		StuckRecovery:    t.StuckRecovery,
	}
	if t.RespawnKind != "" {
		if typ.RespawnKind, err = agent.ParseKind(t.RespawnKind); err != nil {
			return nil, err
		}
	}
	for _, p := range t.Predators {
		k, err := agent.ParseKind(p)
		if err != nil {
			return nil, err
		}
		typ.Predators = append(typ.Predators, k)
	}
	if t.Speed != nil {
		typ.Speed = &agent.LogNormal{Mu: t.Speed.Mu, Sigma: t.Speed.Sigma}
	}
	if t.Meander.Enabled {
		typ.Meander = &agent.LogNormal{Mu: t.Meander.Mean, Sigma: t.Meander.Std}
	}
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	return typ, nil
}
