package agent

import (
	"github.com/zeusync/cellsim/internal/core/motility"
)

// Step advances the agent by one tick. Agents no longer in the field are
// left alone. Errors come only from spawning replacements.
func (a *Agent) Step(env Environment) error {
	f := env.Field()
	loc, ok := f.Location(a)
	if !ok {
		return nil
	}
	a.location = loc

	bouncing := !a.bounce.IsZero()
	if !bouncing {
		a.orientation = a.paradigm.NewOrientation(a.orientation, a)
	} else if c, ok := a.paradigm.(motility.Clocked); ok {
		c.Elapse()
	}
	a.applyBounce()

	move := a.paradigm.Move(a.orientation, a)
	res, err := f.AttemptMove(a, move)
	if err != nil {
		return err
	}
	a.location = res.Location
	a.bounce = res.Bounce
	a.contacts = a.contacts[:0]
	for _, b := range res.Colliders {
		if other, ok := b.(*Agent); ok {
			a.contacts = append(a.contacts, other)
		}
	}

	if predator := a.predatorIn(a.contacts); predator != nil {
		a.retire(env, RemovedConsumed, predator)
		if a.typ.ReplaceOnConsume {
			return a.replace(env)
		}
		return nil
	}

	if f.Outside(a) {
		switch a.typ.Boundary {
		case BoundaryReflect:
			r, err := f.ReflectTowardCenter(a, a.boundaryStep(env.Settings()))
			if err != nil {
				return err
			}
			a.location = r.Location
		case BoundaryRespawn:
			a.retire(env, RemovedExited, nil)
			return a.replace(env)
		}
	}

	if a.typ.StuckRecovery && bouncing && !res.Moved() {
		a.retire(env, RemovedStuck, nil)
		return a.replace(env)
	}
	return nil
}

func (a *Agent) predatorIn(contacts []*Agent) *Agent {
	if len(a.typ.Predators) == 0 {
		return nil
	}
	for _, c := range contacts {
		if a.typ.IsPrey(c.Kind()) {
			return c
		}
	}
	return nil
}

func (a *Agent) boundaryStep(s motility.Settings) float64 {
	speed := a.typ.BoundarySpeed
	if speed == 0 {
		speed = a.speed
	}
	if speed == 0 {
		speed = s.MaxSpeed
	}
	return speed * s.TimeSlice
}

func (a *Agent) retire(env Environment, reason RemovalReason, by *Agent) {
	env.Field().Remove(a)
	a.removed = true
	env.Retire(a, reason, by)
}

func (a *Agent) replace(env Environment) error {
	_, err := env.Spawn(a.typ.Replacement())
	return err
}
