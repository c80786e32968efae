package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is a point, displacement or direction in the simulation volume.
type Vector3 struct {
	X, Y, Z float64
}

var (
	Zero  = Vector3{}
	XAxis = Vector3{X: 1}
	YAxis = Vector3{Y: 1}
	ZAxis = Vector3{Z: 1}
)

func Vec(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func fromMgl(v mgl64.Vec3) Vector3 { return Vector3{X: v[0], Y: v[1], Z: v[2]} }

func (v Vector3) mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

func (v Vector3) Neg() Vector3 { return Vector3{-v.X, -v.Y, -v.Z} }

func (v Vector3) Dot(o Vector3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) LengthSq() float64 { return v.Dot(v) }

func (v Vector3) Length() float64 { return math.Sqrt(v.LengthSq()) }

func (v Vector3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Unit returns v scaled to length one. The second result is false, and the
// zero vector is returned, when v has no usable direction.
func (v Vector3) Unit() (Vector3, bool) {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero, false
	}
	return v.Scale(1 / l), true
}

// Resize keeps the direction of v and sets its length to l.
func (v Vector3) Resize(l float64) (Vector3, bool) {
	u, ok := v.Unit()
	if !ok {
		return Zero, false
	}
	return u.Scale(l), true
}

func (v Vector3) Distance(o Vector3) float64 { return v.Sub(o).Length() }

func (v Vector3) DistanceSq(o Vector3) float64 { return v.Sub(o).LengthSq() }

// AngleBetween returns the unsigned angle in radians, or zero when either
// vector is degenerate.
func AngleBetween(a, b Vector3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

func (v Vector3) ApproxEqual(o Vector3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps && math.Abs(v.Z-o.Z) <= eps
}

func (v Vector3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }
