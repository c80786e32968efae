package motility

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

const (
	NameBallistic                = "ballistic"
	NameBrownian                 = "brownian"
	NameBrownianMeander          = "brownian_meander"
	NameHomogeneousCRW           = "homogeneous_crw"
	NameHeterogeneousCRW         = "heterogeneous_crw"
	NameHeterogeneousBetaMeander = "heterogeneous_beta_meander"
	NameLevyFlight               = "levy_flight"
)

// Names lists every paradigm NewFactory understands.
func Names() []string {
	return []string{
		NameBallistic,
		NameBrownian,
		NameBrownianMeander,
		NameHomogeneousCRW,
		NameHeterogeneousCRW,
		NameHeterogeneousBetaMeander,
		NameLevyFlight,
	}
}

// Config selects a paradigm by name and carries the parameters of every
// variant. Only the block matching Name is read.
type Config struct {
	Name string `yaml:"name"`

	Ballistic        BallisticConfig        `yaml:"ballistic"`
	Brownian         BrownianConfig         `yaml:"brownian"`
	BrownianMeander  BrownianMeanderConfig  `yaml:"brownian_meander"`
	HomogeneousCRW   HomogeneousCRWConfig   `yaml:"homogeneous_crw"`
	HeterogeneousCRW HeterogeneousCRWConfig `yaml:"heterogeneous_crw"`
	BetaMeander      BetaMeanderConfig      `yaml:"heterogeneous_beta_meander"`
	Levy             LevyConfig             `yaml:"levy_flight"`
}

type BallisticConfig struct {
	Speed float64 `yaml:"speed"`
}

type BrownianConfig struct {
	SpeedStd float64 `yaml:"speed_std"`
}

type BrownianMeanderConfig struct {
	// Speed is used for agents without an individual speed.
	Speed float64 `yaml:"speed"`
}

type HomogeneousCRWConfig struct {
	PitchRateMean float64 `yaml:"pitch_rate_mean"`
	PitchRateStd  float64 `yaml:"pitch_rate_std"`
	RollRateMean  float64 `yaml:"roll_rate_mean"`
	RollRateStd   float64 `yaml:"roll_rate_std"`
	SpeedMean     float64 `yaml:"speed_mean"`
	SpeedStd      float64 `yaml:"speed_std"`
}

// Hyper describes a Gaussian whose mean and standard deviation are themselves
// drawn from Gaussians.
type Hyper struct {
	MeanMean float64 `yaml:"mean_mean"`
	MeanStd  float64 `yaml:"mean_std"`
	StdMean  float64 `yaml:"std_mean"`
	StdStd   float64 `yaml:"std_std"`
}

func (h Hyper) draw(r *rand.Rand) (mean, std float64) {
	mean = math.Abs(gauss(r, h.MeanMean, h.MeanStd))
	std = math.Abs(gauss(r, h.StdMean, h.StdStd))
	return mean, std
}

func (h Hyper) validate() error {
	if h.MeanStd < 0 || h.StdMean < 0 || h.StdStd < 0 {
		return errors.New("standard deviations must be non-negative")
	}
	return nil
}

type HeterogeneousCRWConfig struct {
	Pitch Hyper `yaml:"pitch"`
	// Roll.MeanMean < 0 selects a uniform roll.
	Roll  Hyper `yaml:"roll"`
	Speed Hyper `yaml:"speed"`
}

type BetaMeanderConfig struct {
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
	Scale float64 `yaml:"scale"`
	Speed float64 `yaml:"speed"`
}

type LevyConfig struct {
	// RestMu <= 0 disables resting.
	RestMu      float64 `yaml:"rest_mu"`
	RestScale   float64 `yaml:"rest_scale"`
	MotileMu    float64 `yaml:"motile_mu"`
	MotileScale float64 `yaml:"motile_scale"`
	SpeedMu     float64 `yaml:"speed_mu"`
	SpeedScale  float64 `yaml:"speed_scale"`
}

// Validate checks the parameters of the selected paradigm.
func (c Config) Validate() error {
	var err error
	switch c.Name {
	case NameBallistic:
	case NameBrownian:
		if c.Brownian.SpeedStd < 0 {
			err = errors.New("speed_std must be non-negative")
		}
	case NameBrownianMeander:
	case NameHomogeneousCRW:
		h := c.HomogeneousCRW
		if h.PitchRateStd < 0 || h.RollRateStd < 0 || h.SpeedStd < 0 {
			err = errors.New("standard deviations must be non-negative")
		}
	case NameHeterogeneousCRW:
		h := c.HeterogeneousCRW
		err = errors.Join(h.Pitch.validate(), h.Roll.validate(), h.Speed.validate())
	case NameHeterogeneousBetaMeander:
		if c.BetaMeander.Alpha <= 0 || c.BetaMeander.Beta <= 0 {
			err = errors.New("beta shape parameters must be positive")
		}
	case NameLevyFlight:
		l := c.Levy
		if l.MotileScale <= 0 || l.SpeedScale <= 0 || (l.RestMu > 0 && l.RestScale <= 0) {
			err = errors.New("levy scale parameters must be positive")
		}
	default:
		return fmt.Errorf("%w: %q (known: %s)", ErrUnknownParadigm, c.Name, strings.Join(Names(), ", "))
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidParams, c.Name, err)
	}
	return nil
}

// Factory hands out the paradigm instance for a new agent. Stateless
// variants share one instance; stateful ones are built per call.
type Factory func() Paradigm

// NewFactory validates cfg and returns a Factory bound to settings and r.
func NewFactory(cfg Config, settings Settings, r *rand.Rand) (Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if settings.TimeSlice <= 0 || settings.MaxSpeed <= 0 {
		return nil, fmt.Errorf("%w: time slice and max speed must be positive", ErrInvalidParams)
	}

	var shared Paradigm
	switch cfg.Name {
	case NameBallistic:
		shared = NewBallistic(settings, cfg.Ballistic.Speed)
	case NameBrownian:
		shared = NewBrownian(settings, r, cfg.Brownian.SpeedStd)
	case NameBrownianMeander:
		shared = NewBrownianMeander(settings, r, cfg.BrownianMeander.Speed)
	case NameHomogeneousCRW:
		shared = NewHomogeneousCRW(settings, r, cfg.HomogeneousCRW)
	case NameHeterogeneousCRW:
		shared = NewHeterogeneousCRW(settings, r, cfg.HeterogeneousCRW)
	case NameHeterogeneousBetaMeander:
		shared = NewHeterogeneousBetaMeander(settings, r, cfg.BetaMeander)
	case NameLevyFlight:
		levy := cfg.Levy
		return func() Paradigm { return NewLevyFlight(settings, r, levy) }, nil
	}
	return func() Paradigm { return shared }, nil
}
