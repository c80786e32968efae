// Package motility implements the orientation and translation strategies
// agents use to move. A Paradigm never sees the agent's concrete type; it
// discovers per-agent state through the small capability interfaces below.
package motility

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/rng"
)

var (
	ErrUnknownParadigm = errors.New("unknown motility paradigm")
	ErrInvalidParams   = errors.New("invalid motility parameters")
)

type Paradigm interface {
	Name() string
	// NewOrientation returns the orientation for this step given the current one.
	NewOrientation(current geom.Quaternion, subject Subject) geom.Quaternion
	// Move returns the proposed displacement for this step. Its length never
	// exceeds Settings.MaxSpeed * Settings.TimeSlice.
	Move(orientation geom.Quaternion, subject Subject) geom.Vector3
}

// Subject is the minimum a paradigm may ask of the agent it moves.
type Subject interface {
	Location() geom.Vector3
}

// Speeder is implemented by agents that may carry an individual speed. The
// flag is false when the agent has none and the paradigm's own speed applies.
type Speeder interface {
	Speed() (float64, bool)
}

// Anchored is implemented by agents that remember where their track started.
type Anchored interface {
	StartLocation() (geom.Vector3, bool)
}

// Meanderer is implemented by agents carrying a meander bias. A negative
// chance biases toward the start location instead of away from it.
type Meanderer interface {
	MeanderChance() float64
	AddMeander()
}

// Clocked paradigms keep time on their own. The agent calls Elapse on steps
// where NewOrientation is skipped so timers keep running.
type Clocked interface {
	Elapse()
}

// Settings are the simulation-wide values every paradigm is built with.
type Settings struct {
	TimeSlice float64
	MaxSpeed  float64
}

// distance turns a sampled speed into a path length for one step.
func (s Settings) distance(speed float64) float64 {
	if math.IsNaN(speed) {
		return 0
	}
	return math.Min(math.Abs(speed), s.MaxSpeed) * s.TimeSlice
}

// forward moves dist along the agent's facing direction.
func forward(orientation geom.Quaternion, dist float64) geom.Vector3 {
	return orientation.Facing().Scale(dist)
}

// turn applies a roll about the agent's x axis followed by a pitch about its
// y axis. Both rotations are in the agent frame.
func turn(current geom.Quaternion, roll, pitch float64) geom.Quaternion {
	o := current.Multiply(geom.RotationAbout(roll, geom.XAxis))
	return o.Multiply(geom.RotationAbout(pitch, geom.YAxis))
}

func gauss(r *rand.Rand, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}

func signed(r *rand.Rand, v float64) float64 {
	return v * rng.Sign(r)
}

// meander replaces move with a displacement of length dist pointing away
// from (or toward) the agent's start location, with the agent's meander
// chance. The agent's meander counter is bumped when the override happens.
func meander(r *rand.Rand, move geom.Vector3, dist float64, subject Subject) geom.Vector3 {
	m, ok := subject.(Meanderer)
	if !ok {
		return move
	}
	chance := m.MeanderChance()
	if chance == 0 || math.IsNaN(chance) {
		return move
	}
	if !rng.Bernoulli(r, math.Abs(chance)) {
		return move
	}

	a, ok := subject.(Anchored)
	if !ok {
		return move
	}
	start, ok := a.StartLocation()
	if !ok {
		return move
	}

	dir := subject.Location().Sub(start)
	if chance < 0 {
		dir = dir.Neg()
	}
	away, ok := dir.Resize(dist)
	if !ok || away.IsZero() {
		return move
	}
	m.AddMeander()
	return away
}

// LevyPositive draws from a Lévy distribution with location mu and scale c,
// rejecting non-positive values.
func LevyPositive(r *rand.Rand, mu, c float64) float64 {
	const maxDraws = 10000
	var x float64
	for i := 0; i < maxDraws; i++ {
		z := gauss(r, 0, 1)
		if z == 0 {
			continue
		}
		x = mu + c/(z*z)
		if x > 0 && !math.IsInf(x, 0) {
			return x
		}
	}
	return math.Abs(x)
}
