package field

import (
	"fmt"
	"math"

	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/rng"
)

// IsOccupiable reports whether b could sit at loc: it must not touch any
// other body, intrude on a restricted zone or break its own constraint.
func (f *Field) IsOccupiable(loc geom.Vector3, b Body) bool {
	id := b.ID()
	radius := b.Radius()
	for _, e := range f.entries {
		if e.body.ID() == id {
			continue
		}
		touch := radius + e.body.Radius()
		if e.loc.DistanceSq(loc) <= touch*touch {
			return false
		}
	}
	for _, restricted := range f.restricted {
		if restricted(loc, radius) {
			return false
		}
	}
	if c, ok := b.(Constrained); ok && !c.CanOccupy(loc) {
		return false
	}
	return true
}

// PlaceRandomly samples locations for the field's shape until one is
// occupiable, then places b there. It gives up after the configured number
// of attempts with ErrPlacementExhausted.
func (f *Field) PlaceRandomly(b Body) (geom.Vector3, error) {
	if f.Contains(b) {
		return geom.Zero, fmt.Errorf("%w: id %d", ErrAlreadyPlaced, b.ID())
	}
	sample := f.sampleBox
	if f.cfg.Shape == ShapeSphere {
		sample = f.sampleSphere
	}

	attempts := f.cfg.maxAttempts()
	for i := 0; i < attempts; i++ {
		loc := sample()
		if f.IsOccupiable(loc, b) {
			return loc, f.Place(b, loc)
		}
	}
	return geom.Zero, fmt.Errorf("%w: id %d radius %.3g after %d attempts",
		ErrPlacementExhausted, b.ID(), b.Radius(), attempts)
}

// sampleBox draws from the imaging volume widened by the buffer fraction on
// every side except above (z < 0).
func (f *Field) sampleBox() geom.Vector3 {
	w, h, d, bf := f.cfg.Width, f.cfg.Height, f.cfg.Depth, f.cfg.BufferFraction
	return geom.Vec(
		rng.Uniform(f.rng, -w*bf, w+w*bf),
		rng.Uniform(f.rng, -h*bf, h+h*bf),
		rng.Uniform(f.rng, 0, d+d*bf),
	)
}

// sampleSphere draws spherical coordinates with theta in [0, 2pi), phi in
// [0, pi) and r in [0, R). Uniform r over-weights the centre relative to a
// volume-uniform draw; UniformSphereSampling switches to the latter.
func (f *Field) sampleSphere() geom.Vector3 {
	radius := f.cfg.Radius
	theta := rng.Angle(f.rng)
	var phi, r float64
	if f.cfg.UniformSphereSampling {
		phi = math.Acos(1 - 2*f.rng.Float64())
		r = radius * math.Cbrt(f.rng.Float64())
	} else {
		phi = f.rng.Float64() * math.Pi
		r = f.rng.Float64() * radius
	}
	offset := geom.Vec(
		r*math.Cos(theta)*math.Sin(phi),
		r*math.Sin(theta)*math.Sin(phi),
		r*math.Cos(phi),
	)
	return f.Center().Add(offset)
}
