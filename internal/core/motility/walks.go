package motility

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/rng"
)

// Ballistic keeps its heading and moves at a fixed speed.
type Ballistic struct {
	settings Settings
	speed    float64
}

func NewBallistic(settings Settings, speed float64) *Ballistic {
	return &Ballistic{settings: settings, speed: speed}
}

func (b *Ballistic) Name() string { return NameBallistic }

func (b *Ballistic) NewOrientation(current geom.Quaternion, _ Subject) geom.Quaternion {
	return current
}

func (b *Ballistic) Move(orientation geom.Quaternion, _ Subject) geom.Vector3 {
	return forward(orientation, b.settings.distance(b.speed))
}

// Brownian picks a fresh uniform heading every step and a zero-mean
// Gaussian speed.
type Brownian struct {
	settings Settings
	rng      *rand.Rand
	speedStd float64
}

func NewBrownian(settings Settings, r *rand.Rand, speedStd float64) *Brownian {
	return &Brownian{settings: settings, rng: r, speedStd: speedStd}
}

func (b *Brownian) Name() string { return NameBrownian }

func (b *Brownian) NewOrientation(geom.Quaternion, Subject) geom.Quaternion {
	return geom.RandomUniform(b.rng)
}

func (b *Brownian) Move(orientation geom.Quaternion, _ Subject) geom.Vector3 {
	return forward(orientation, b.settings.distance(gauss(b.rng, 0, b.speedStd)))
}

// BrownianMeander is Brownian motion at the agent's individual speed with a
// meander bias relative to the track start.
type BrownianMeander struct {
	settings     Settings
	rng          *rand.Rand
	defaultSpeed float64
}

func NewBrownianMeander(settings Settings, r *rand.Rand, defaultSpeed float64) *BrownianMeander {
	return &BrownianMeander{settings: settings, rng: r, defaultSpeed: defaultSpeed}
}

func (b *BrownianMeander) Name() string { return NameBrownianMeander }

func (b *BrownianMeander) NewOrientation(geom.Quaternion, Subject) geom.Quaternion {
	return geom.RandomUniform(b.rng)
}

func (b *BrownianMeander) Move(orientation geom.Quaternion, subject Subject) geom.Vector3 {
	dist := b.settings.distance(individualSpeed(subject, b.defaultSpeed))
	return meander(b.rng, forward(orientation, dist), dist, subject)
}

// HomogeneousCRW is a correlated random walk where every agent shares the
// same turning and speed distributions.
type HomogeneousCRW struct {
	settings Settings
	rng      *rand.Rand
	cfg      HomogeneousCRWConfig
}

func NewHomogeneousCRW(settings Settings, r *rand.Rand, cfg HomogeneousCRWConfig) *HomogeneousCRW {
	return &HomogeneousCRW{settings: settings, rng: r, cfg: cfg}
}

func (c *HomogeneousCRW) Name() string { return NameHomogeneousCRW }

func (c *HomogeneousCRW) NewOrientation(current geom.Quaternion, _ Subject) geom.Quaternion {
	roll := crwRoll(c.rng, c.cfg.RollRateMean, c.cfg.RollRateMean, c.cfg.RollRateStd, c.settings.TimeSlice)
	pitch := signed(c.rng, gauss(c.rng, c.cfg.PitchRateMean, c.cfg.PitchRateStd)) * c.settings.TimeSlice
	return turn(current, roll, pitch)
}

func (c *HomogeneousCRW) Move(orientation geom.Quaternion, _ Subject) geom.Vector3 {
	return forward(orientation, c.settings.distance(gauss(c.rng, c.cfg.SpeedMean, c.cfg.SpeedStd)))
}

// HeterogeneousCRW redraws the turning and speed distribution parameters on
// every call from second-level Gaussians, giving each step its own character.
type HeterogeneousCRW struct {
	settings Settings
	rng      *rand.Rand
	cfg      HeterogeneousCRWConfig
}

func NewHeterogeneousCRW(settings Settings, r *rand.Rand, cfg HeterogeneousCRWConfig) *HeterogeneousCRW {
	return &HeterogeneousCRW{settings: settings, rng: r, cfg: cfg}
}

func (c *HeterogeneousCRW) Name() string { return NameHeterogeneousCRW }

func (c *HeterogeneousCRW) NewOrientation(current geom.Quaternion, _ Subject) geom.Quaternion {
	pitchMean, pitchStd := c.cfg.Pitch.draw(c.rng)
	rollMean, rollStd := c.cfg.Roll.draw(c.rng)

	roll := crwRoll(c.rng, c.cfg.Roll.MeanMean, rollMean, rollStd, c.settings.TimeSlice)
	pitch := signed(c.rng, gauss(c.rng, pitchMean, pitchStd)) * c.settings.TimeSlice
	return turn(current, roll, pitch)
}

func (c *HeterogeneousCRW) Move(orientation geom.Quaternion, _ Subject) geom.Vector3 {
	mean, std := c.cfg.Speed.draw(c.rng)
	return forward(orientation, c.settings.distance(gauss(c.rng, mean, std)))
}

// HeterogeneousBetaMeander turns by Beta-distributed angles and moves at the
// agent's individual speed with a meander bias.
type HeterogeneousBetaMeander struct {
	settings     Settings
	rng          *rand.Rand
	turning      distuv.Beta
	scale        float64
	defaultSpeed float64
}

func NewHeterogeneousBetaMeander(settings Settings, r *rand.Rand, cfg BetaMeanderConfig) *HeterogeneousBetaMeander {
	return &HeterogeneousBetaMeander{
		settings:     settings,
		rng:          r,
		turning:      distuv.Beta{Alpha: cfg.Alpha, Beta: cfg.Beta, Src: r},
		scale:        cfg.Scale,
		defaultSpeed: cfg.Speed,
	}
}

func (b *HeterogeneousBetaMeander) Name() string { return NameHeterogeneousBetaMeander }

func (b *HeterogeneousBetaMeander) NewOrientation(current geom.Quaternion, _ Subject) geom.Quaternion {
	roll := signed(b.rng, b.turning.Rand()*b.scale) * b.settings.TimeSlice
	pitch := signed(b.rng, b.turning.Rand()*b.scale) * b.settings.TimeSlice
	return turn(current, roll, pitch)
}

func (b *HeterogeneousBetaMeander) Move(orientation geom.Quaternion, subject Subject) geom.Vector3 {
	dist := b.settings.distance(individualSpeed(subject, b.defaultSpeed))
	return meander(b.rng, forward(orientation, dist), dist, subject)
}

// crwRoll draws the roll angle for one step. A negative configured mean
// selects a uniform roll.
func crwRoll(r *rand.Rand, configuredMean, mean, std, dt float64) float64 {
	if configuredMean < 0 {
		return rng.Angle(r)
	}
	return signed(r, gauss(r, mean, std)) * dt
}

func individualSpeed(subject Subject, fallback float64) float64 {
	if s, ok := subject.(Speeder); ok {
		if speed, ok := s.Speed(); ok {
			return speed
		}
	}
	return fallback
}
