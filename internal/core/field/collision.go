package field

import (
	"fmt"
	"math"

	"github.com/zeusync/cellsim/internal/core/geom"
)

// MoveResult describes how a proposed move was resolved.
type MoveResult struct {
	From         geom.Vector3
	Location     geom.Vector3
	Displacement geom.Vector3
	// Bounce is the unit sum of contact normals, or zero when nothing was hit.
	Bounce    geom.Vector3
	Colliders []Body
}

// Moved reports whether the body changed position.
func (r MoveResult) Moved() bool { return !r.Displacement.IsZero() }

// AttemptMove moves b by at most proposed, stopping at the first point along
// the path where it would touch another body.
//
// Bodies are tested one at a time against the path shortened so far, so two
// contacts met at nearly the same instant resolve as a sequence of small
// bounces rather than one combined response.
func (f *Field) AttemptMove(b Body, proposed geom.Vector3) (MoveResult, error) {
	self, ok := f.byID[b.ID()]
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: id %d", ErrNotInField, b.ID())
	}

	c := self.loc
	res := MoveResult{From: c, Location: c}
	if !proposed.IsFinite() || proposed.IsZero() {
		return res, nil
	}

	cs := proposed
	var bounce geom.Vector3
	for _, other := range f.entries {
		if other == self {
			continue
		}
		o := other.loc
		touch := b.Radius() + other.body.Radius()

		co := o.Sub(c)
		co2 := co.LengthSq()
		csLen := cs.Length()
		if csLen == 0 {
			break
		}

		// The path is too short to reach touching range.
		if csLen <= math.Sqrt(co2)-touch {
			continue
		}
		// Moving away from other.
		if co.Dot(cs) <= 0 {
			continue
		}

		cr := co.Dot(cs.Scale(1 / csLen))
		ro2 := co2 - cr*cr
		touch2 := touch * touch
		if ro2 > touch2 {
			continue
		}

		ct := math.Max(0, cr-math.Sqrt(touch2-ro2))
		// The path ends before the spheres would touch.
		if ct > csLen {
			continue
		}
		cs = cs.Scale(ct / csLen)
		res.Colliders = append(res.Colliders, other.body)

		if normal, ok := c.Add(cs).Sub(o).Unit(); ok {
			bounce = bounce.Add(normal)
		}
	}

	if unit, ok := bounce.Unit(); ok {
		res.Bounce = unit
	}
	res.Displacement = cs
	res.Location = c.Add(cs)
	self.loc = res.Location
	return res, nil
}

// ReflectTowardCenter moves b up to step units straight toward the centre of
// the volume. The move is collision checked; contacts made on the way are
// reported but do not produce a bounce.
func (f *Field) ReflectTowardCenter(b Body, step float64) (MoveResult, error) {
	loc, ok := f.Location(b)
	if !ok {
		return MoveResult{}, fmt.Errorf("%w: id %d", ErrNotInField, b.ID())
	}
	toCenter := f.Center().Sub(loc)
	dist := toCenter.Length()
	move, ok := toCenter.Resize(math.Min(math.Abs(step), dist))
	if !ok {
		return MoveResult{From: loc, Location: loc}, nil
	}
	res, err := f.AttemptMove(b, move)
	if err != nil {
		return res, err
	}
	res.Bounce = geom.Zero
	return res, nil
}
