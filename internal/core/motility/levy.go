package motility

import (
	"math/rand/v2"

	"github.com/zeusync/cellsim/internal/core/geom"
)

type LevyState uint8

const (
	Rest LevyState = iota
	Motile
)

func (s LevyState) String() string {
	if s == Motile {
		return "motile"
	}
	return "rest"
}

const timerEpsilon = 1e-9

// LevyFlight alternates between resting and straight runs whose durations
// and speeds come from long-tailed distributions. It keeps per-agent state,
// so every agent needs its own instance.
type LevyFlight struct {
	settings Settings
	rng      *rand.Rand
	cfg      LevyConfig

	state     LevyState
	remaining float64
	speed     float64
}

var _ Clocked = (*LevyFlight)(nil)

// NewLevyFlight starts at rest with an elapsed timer, so the first
// NewOrientation call begins a run.
func NewLevyFlight(settings Settings, r *rand.Rand, cfg LevyConfig) *LevyFlight {
	return &LevyFlight{settings: settings, rng: r, cfg: cfg, state: Rest}
}

func (l *LevyFlight) Name() string { return NameLevyFlight }

func (l *LevyFlight) State() LevyState { return l.state }

// Remaining is the time left in the current state.
func (l *LevyFlight) Remaining() float64 { return l.remaining }

// ForceRest puts the walker at rest for duration.
func (l *LevyFlight) ForceRest(duration float64) {
	l.state = Rest
	l.speed = 0
	l.remaining = duration
}

// Elapse advances the timer on a step where the agent keeps its bounce
// heading. A run that expires stops here; a run that starts keeps the
// bounce heading instead of a fresh one.
func (l *LevyFlight) Elapse() {
	l.remaining -= l.settings.TimeSlice
	l.plan()
}

// NewOrientation advances the timer by one step and re-plans. A fresh
// uniform heading is returned only when a new run starts.
func (l *LevyFlight) NewOrientation(current geom.Quaternion, _ Subject) geom.Quaternion {
	l.remaining -= l.settings.TimeSlice
	if heading, started := l.plan(); started {
		return heading
	}
	return current
}

func (l *LevyFlight) Move(orientation geom.Quaternion, _ Subject) geom.Vector3 {
	if l.state == Rest {
		return geom.Zero
	}
	return forward(orientation, l.settings.distance(l.speed))
}

// plan runs the state machine twice so that zero-length states do not cost
// an idle step.
func (l *LevyFlight) plan() (heading geom.Quaternion, started bool) {
	for i := 0; i < 2; i++ {
		if l.state == Rest && l.remaining <= timerEpsilon {
			heading = geom.RandomUniform(l.rng)
			started = true
			l.speed = LevyPositive(l.rng, l.cfg.SpeedMu, l.cfg.SpeedScale)
			l.remaining = LevyPositive(l.rng, l.cfg.MotileMu, l.cfg.MotileScale)
			l.state = Motile
		}
		if l.state == Motile && l.remaining <= timerEpsilon {
			l.speed = 0
			l.remaining = 0
			if l.cfg.RestMu > 0 {
				l.remaining = LevyPositive(l.rng, l.cfg.RestMu, l.cfg.RestScale)
			}
			l.state = Rest
		}
	}
	return heading, started
}
