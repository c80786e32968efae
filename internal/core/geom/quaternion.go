package geom

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion is a rotation in absolute space. Every constructor and
// composition in this package returns a unit quaternion.
type Quaternion struct {
	q mgl64.Quat
}

func Identity() Quaternion { return Quaternion{q: mgl64.QuatIdent()} }

// FromComponents builds a quaternion from w + xi + yj + zk and normalizes it.
func FromComponents(w, x, y, z float64) Quaternion {
	return Quaternion{q: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}.Normalize()
}

// RepresentRotation builds the rotation of angle radians about the given
// axis. The axis need not be unit length; a zero axis yields the identity.
func RepresentRotation(angle, ax, ay, az float64) Quaternion {
	axis, ok := Vec(ax, ay, az).Unit()
	if !ok {
		return Identity()
	}
	return Quaternion{q: mgl64.QuatRotate(angle, axis.mgl())}.Normalize()
}

// RotationAbout is RepresentRotation with a vector axis.
func RotationAbout(angle float64, axis Vector3) Quaternion {
	return RepresentRotation(angle, axis.X, axis.Y, axis.Z)
}

// Multiply returns q*o. Rotations in the agent frame are applied as
// orientation.Multiply(local); rotations in absolute space as
// absolute.Multiply(orientation).
func (q Quaternion) Multiply(o Quaternion) Quaternion {
	return Quaternion{q: q.q.Mul(o.q)}.Normalize()
}

func (q Quaternion) Normalize() Quaternion {
	n := q.q.Normalize()
	if math.IsNaN(n.W) {
		return Identity()
	}
	return Quaternion{q: n}
}

func (q Quaternion) Magnitude() float64 { return q.q.Len() }

// Transform rotates v by q.
func (q Quaternion) Transform(v Vector3) Vector3 {
	return fromMgl(q.q.Rotate(v.mgl()))
}

// Facing is the agent's forward direction, the image of the x axis.
func (q Quaternion) Facing() Vector3 { return q.Transform(XAxis) }

func (q Quaternion) Components() (w, x, y, z float64) {
	return q.q.W, q.q.V[0], q.q.V[1], q.q.V[2]
}

// ToEulerAngles returns roll (about x), pitch (about y) and yaw (about z)
// in radians.
func (q Quaternion) ToEulerAngles() (roll, pitch, yaw float64) {
	w, x, y, z := q.Components()

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sp := 2 * (w*y - z*x)
	if sp >= 1 {
		pitch = math.Pi / 2
	} else if sp <= -1 {
		pitch = -math.Pi / 2
	} else {
		pitch = math.Asin(sp)
	}

	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// ApproxEqual compares rotations, treating q and -q as the same rotation.
func (q Quaternion) ApproxEqual(o Quaternion, eps float64) bool {
	return q.q.ApproxEqualThreshold(o.q, eps) || q.q.ApproxEqualThreshold(o.q.Scale(-1), eps)
}

// RandomUniform samples a rotation uniformly over SO(3) using the
// subgroup algorithm of Shoemake.
func RandomUniform(r *rand.Rand) Quaternion {
	u1, u2, u3 := r.Float64(), r.Float64(), r.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	t2, t3 := 2*math.Pi*u2, 2*math.Pi*u3
	return FromComponents(b*math.Cos(t3), a*math.Sin(t2), a*math.Cos(t2), b*math.Sin(t3))
}
