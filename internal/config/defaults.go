package config

import (
	"github.com/zeusync/cellsim/internal/core/field"
	"github.com/zeusync/cellsim/internal/core/motility"
)

// Default returns the calibrated phagocytosis scenario: antigen fragments
// drifting with a Beta meander inside a spherical compartment, consumed by
// macrophages on a heterogeneous correlated random walk.
func Default() *Config {
	return &Config{
		Seed:      1,
		TimeSlice: 0.5,
		EndTime:   60,
		MaxSpeed:  30,
		LogLevel:  "info",
		Field: field.Config{
			Shape:                field.ShapeSphere,
			Radius:               81,
			MaxPlacementAttempts: field.DefaultMaxPlacementAttempts,
		},
		Types: []TypeConfig{
			{
				Kind:             "fragment",
				Count:            100,
				Diameter:         3,
				Boundary:         "respawn",
				Predators:        []string{"macrophage"},
				ReplaceOnConsume: true,
				StuckRecovery:    true,
				Speed:            &LogNormalConfig{Mu: 0.8, Sigma: 0.5},
				Meander:          MeanderConfig{Enabled: true, Mean: -2.5, Std: 1},
				Paradigm: motility.Config{
					Name: motility.NameHeterogeneousBetaMeander,
					BetaMeander: motility.BetaMeanderConfig{
						Alpha: 1.5,
						Beta:  4,
						Scale: 3,
						Speed: 2,
					},
				},
			},
			{
				Kind:          "macrophage",
				Count:         18,
				Diameter:      20,
				Boundary:      "reflect",
				BoundarySpeed: 4,
				Paradigm: motility.Config{
					Name: motility.NameHeterogeneousCRW,
					HeterogeneousCRW: motility.HeterogeneousCRWConfig{
						Pitch: motility.Hyper{MeanMean: 0.8, MeanStd: 0.2, StdMean: 0.4, StdStd: 0.1},
						Roll:  motility.Hyper{MeanMean: -1},
						Speed: motility.Hyper{MeanMean: 2.5, MeanStd: 0.6, StdMean: 0.8, StdStd: 0.2},
					},
				},
			},
		},
		SampleEvery: 2,
		Stream: StreamConfig{
			Addr:  "127.0.0.1:8090",
			Every: 1,
		},
		Replicates: 1,
		Workers:    4,
	}
}
