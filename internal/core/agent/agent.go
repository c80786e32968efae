// Package agent models a single motile cell: its geometry, orientation and
// the per-step state machine that drives it through the field.
package agent

import (
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/zeusync/cellsim/internal/core/field"
	"github.com/zeusync/cellsim/internal/core/geom"
	"github.com/zeusync/cellsim/internal/core/motility"
)

// Sequence hands out agent ids, increasing from 1. Each simulation owns one.
type Sequence struct {
	last atomic.Uint64
}

func (s *Sequence) Next() uint64 { return s.last.Add(1) }

// Last returns the most recently issued id.
func (s *Sequence) Last() uint64 { return s.last.Load() }

var (
	_ field.Body         = (*Agent)(nil)
	_ motility.Subject   = (*Agent)(nil)
	_ motility.Speeder   = (*Agent)(nil)
	_ motility.Anchored  = (*Agent)(nil)
	_ motility.Meanderer = (*Agent)(nil)
)

type Agent struct {
	id       uint64
	typ      *Type
	paradigm motility.Paradigm

	location    geom.Vector3
	start       geom.Vector3
	hasStart    bool
	orientation geom.Quaternion
	bounce      geom.Vector3
	contacts    []*Agent

	speed         float64
	meanderChance float64
	meanders      int

	born    uint64
	removed bool
}

// New creates an agent of typ with a uniformly random orientation and its
// individual motility drawn from r. The agent is not placed in any field.
func New(id uint64, typ *Type, r *rand.Rand) *Agent {
	a := &Agent{
		id:          id,
		typ:         typ,
		paradigm:    typ.Paradigm(),
		orientation: geom.RandomUniform(r),
	}
	a.speed = typ.drawSpeed(r)
	a.meanderChance = typ.drawMeanderChance(r)
	return a
}

func (a *Agent) ID() uint64                   { return a.id }
func (a *Agent) Kind() Kind                   { return a.typ.Kind }
func (a *Agent) Type() *Type                  { return a.typ }
func (a *Agent) Radius() float64              { return a.typ.Radius() }
func (a *Agent) Diameter() float64            { return a.typ.Diameter }
func (a *Agent) Paradigm() motility.Paradigm  { return a.paradigm }
func (a *Agent) Location() geom.Vector3       { return a.location }
func (a *Agent) Orientation() geom.Quaternion { return a.orientation }
func (a *Agent) Bounce() geom.Vector3         { return a.bounce }
func (a *Agent) Removed() bool                { return a.removed }
func (a *Agent) MeanderChance() float64       { return a.meanderChance }
func (a *Agent) AddMeander()                  { a.meanders++ }
func (a *Agent) Meanders() int                { return a.meanders }
func (a *Agent) BornAt() uint64               { return a.born }

func (a *Agent) SetOrientation(q geom.Quaternion) { a.orientation = q.Normalize() }

// Contacts are the agents touched during the last move.
func (a *Agent) Contacts() []*Agent { return a.contacts }

// Speed is the agent's individual speed. The flag is false when its type
// draws none.
func (a *Agent) Speed() (float64, bool) { return a.speed, a.typ.Speed != nil }

func (a *Agent) StartLocation() (geom.Vector3, bool) { return a.start, a.hasStart }

// Placed records where the agent entered the field. When track is set the
// location also becomes the start of its track.
func (a *Agent) Placed(loc geom.Vector3, tick uint64, track bool) {
	a.location = loc
	a.born = tick
	if track {
		a.start = loc
		a.hasStart = true
	}
}

// Environment is what an agent needs from the simulation that owns it.
type Environment interface {
	Field() *field.Field
	Settings() motility.Settings
	// Spawn creates an agent of kind at a random occupiable location.
	Spawn(kind Kind) (*Agent, error)
	// Retire is told about every agent that leaves the field.
	Retire(a *Agent, reason RemovalReason, by *Agent)
}

// bounceOffset keeps the new heading a little short of perpendicular to the
// contact so the agent slides along the obstacle.
const bounceOffset = 0.4 * math.Pi

// applyBounce turns the agent away from its last contacts. The rotation is
// computed in absolute space and applied on the left.
func (a *Agent) applyBounce() {
	if a.bounce.IsZero() {
		return
	}
	facing := a.orientation.Facing()
	normal := facing.Cross(a.bounce)
	if normal.IsZero() {
		// Facing is parallel to the contact normal; any perpendicular axis turns it.
		if normal = facing.Cross(geom.YAxis); normal.IsZero() {
			normal = facing.Cross(geom.ZAxis)
		}
	}
	angle := geom.AngleBetween(facing, a.bounce) - bounceOffset
	a.orientation = geom.RotationAbout(angle, normal).Multiply(a.orientation)
}
