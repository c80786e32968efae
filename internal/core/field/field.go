// Package field is the authoritative store of agent positions in continuous
// 3D space. It resolves moves against every other body with a swept-sphere
// test and enforces the boundary of the simulated volume.
//
// A Field is owned by the simulation goroutine and is not safe for
// concurrent use.
package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/cellsim/internal/core/geom"
)

var (
	ErrNotInField         = errors.New("body is not in the field")
	ErrAlreadyPlaced      = errors.New("body is already in the field")
	ErrPlacementExhausted = errors.New("no occupiable location found")
	ErrInvalidGeometry    = errors.New("invalid field geometry")
)

// Body is anything that occupies a sphere in the field.
type Body interface {
	ID() uint64
	Radius() float64
}

// Constrained bodies add their own placement rule on top of collisions and
// restricted zones.
type Constrained interface {
	CanOccupy(loc geom.Vector3) bool
}

// RestrictedZone reports whether a sphere of radius at loc intrudes on a
// region no body may occupy.
type RestrictedZone func(loc geom.Vector3, radius float64) bool

type entry struct {
	body Body
	loc  geom.Vector3
}

type Field struct {
	cfg        Config
	rng        *rand.Rand
	restricted []RestrictedZone

	// entries keeps insertion order so every pass over the field is
	// deterministic.
	entries []*entry
	byID    map[uint64]*entry
}

func New(cfg Config, r *rand.Rand) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Field{
		cfg:  cfg,
		rng:  r,
		byID: make(map[uint64]*entry),
	}, nil
}

func (f *Field) Config() Config { return f.cfg }

func (f *Field) Center() geom.Vector3 { return f.cfg.Center() }

func (f *Field) Len() int { return len(f.entries) }

func (f *Field) Contains(b Body) bool {
	_, ok := f.byID[b.ID()]
	return ok
}

func (f *Field) Location(b Body) (geom.Vector3, bool) {
	e, ok := f.byID[b.ID()]
	if !ok {
		return geom.Zero, false
	}
	return e.loc, true
}

// AddRestrictedZone registers a region that placement must avoid.
func (f *Field) AddRestrictedZone(z RestrictedZone) {
	f.restricted = append(f.restricted, z)
}

// Place puts b at loc without any collision check.
func (f *Field) Place(b Body, loc geom.Vector3) error {
	if f.Contains(b) {
		return fmt.Errorf("%w: id %d", ErrAlreadyPlaced, b.ID())
	}
	e := &entry{body: b, loc: loc}
	f.entries = append(f.entries, e)
	f.byID[b.ID()] = e
	return nil
}

// Relocate sets the location of a body already in the field.
func (f *Field) Relocate(b Body, loc geom.Vector3) error {
	e, ok := f.byID[b.ID()]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotInField, b.ID())
	}
	e.loc = loc
	return nil
}

// Remove takes b out of the field. It reports whether b was present.
func (f *Field) Remove(b Body) bool {
	id := b.ID()
	if _, ok := f.byID[id]; !ok {
		return false
	}
	delete(f.byID, id)
	for i, e := range f.entries {
		if e.body.ID() == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return true
}

// Each visits bodies in insertion order until fn returns false.
func (f *Field) Each(fn func(b Body, loc geom.Vector3) bool) {
	for _, e := range f.entries {
		if !fn(e.body, e.loc) {
			return
		}
	}
}

// NeighborsWithin returns the bodies whose centres lie within radius of b,
// excluding b itself.
func (f *Field) NeighborsWithin(b Body, radius float64) []Body {
	self, ok := f.byID[b.ID()]
	if !ok {
		return nil
	}
	r2 := radius * radius
	var out []Body
	for _, e := range f.entries {
		if e == self {
			continue
		}
		if e.loc.DistanceSq(self.loc) <= r2 {
			out = append(out, e.body)
		}
	}
	return out
}

// Outside reports whether b currently lies beyond the permitted volume.
func (f *Field) Outside(b Body) bool {
	e, ok := f.byID[b.ID()]
	if !ok {
		return false
	}
	return f.cfg.Outside(e.loc)
}

func (f *Field) InsideImagingVolume(loc geom.Vector3) bool {
	return f.cfg.InsideImagingVolume(loc)
}

// Digest fingerprints every id and position in field order. Two runs with
// the same seed and configuration produce the same digest.
func (f *Field) Digest() uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 32)
	for _, e := range f.entries {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, e.body.ID())
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.loc.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.loc.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(e.loc.Z))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}
