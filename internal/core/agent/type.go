package agent

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zeusync/cellsim/internal/core/motility"
)

var (
	ErrUnknownKind     = errors.New("unknown agent kind")
	ErrUnknownBoundary = errors.New("unknown boundary policy")
	ErrInvalidType     = errors.New("invalid agent type")
)

// maxMeanderChance bounds the per-agent meander probability.
const maxMeanderChance = 0.99

// LogNormal parameters of the underlying Gaussian.
type LogNormal struct {
	Mu    float64
	Sigma float64
}

// Type is the parameter bundle shared by every agent of one kind.
type Type struct {
	Kind     Kind
	Diameter float64
	Paradigm motility.Factory

	Boundary BoundaryPolicy
	// BoundarySpeed is the speed used to walk back inside under
	// BoundaryReflect. Zero falls back to the agent's own speed.
	BoundarySpeed float64
	// RespawnKind is spawned when an agent of this type is replaced.
	// KindUnknown means the same kind.
	RespawnKind Kind

	Predators        []Kind
	ReplaceOnConsume bool
	StuckRecovery    bool

	// Speed, when set, gives each agent an individual log-normal speed.
	Speed *LogNormal
	// Meander, when set, gives each agent a log-normal meander chance.
	Meander *LogNormal
}

func (t *Type) Validate() error {
	if t.Kind == KindUnknown {
		return fmt.Errorf("%w: kind is required", ErrInvalidType)
	}
	if t.Diameter <= 0 || math.IsNaN(t.Diameter) {
		return fmt.Errorf("%w: %s diameter must be positive", ErrInvalidType, t.Kind)
	}
	if t.Paradigm == nil {
		return fmt.Errorf("%w: %s has no motility paradigm", ErrInvalidType, t.Kind)
	}
	if t.BoundarySpeed < 0 {
		return fmt.Errorf("%w: %s boundary speed must be non-negative", ErrInvalidType, t.Kind)
	}
	for _, ln := range []*LogNormal{t.Speed, t.Meander} {
		if ln != nil && ln.Sigma < 0 {
			return fmt.Errorf("%w: %s log-normal sigma must be non-negative", ErrInvalidType, t.Kind)
		}
	}
	return nil
}

func (t *Type) Radius() float64 { return t.Diameter / 2 }

// Volume of one agent sphere.
func (t *Type) Volume() float64 {
	r := t.Radius()
	return 4.0 / 3.0 * math.Pi * r * r * r
}

// IsPrey reports whether an agent of this type is consumed on contact with
// kind.
func (t *Type) IsPrey(kind Kind) bool { return slices.Contains(t.Predators, kind) }

func (t *Type) Replacement() Kind {
	if t.RespawnKind == KindUnknown {
		return t.Kind
	}
	return t.RespawnKind
}

func (t *Type) drawSpeed(r *rand.Rand) float64 {
	if t.Speed == nil {
		return 0
	}
	return distuv.LogNormal{Mu: t.Speed.Mu, Sigma: t.Speed.Sigma, Src: r}.Rand()
}

// drawMeanderChance redraws until the chance falls below maxMeanderChance.
func (t *Type) drawMeanderChance(r *rand.Rand) float64 {
	if t.Meander == nil {
		return 0
	}
	const maxDraws = 1000
	dist := distuv.LogNormal{Mu: t.Meander.Mu, Sigma: t.Meander.Sigma, Src: r}
	for i := 0; i < maxDraws; i++ {
		if c := dist.Rand(); c <= maxMeanderChance {
			return c
		}
	}
	return maxMeanderChance
}
