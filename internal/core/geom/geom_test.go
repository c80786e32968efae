package geom

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestVectorArithmetic(t *testing.T) {
	a := Vec(1, 2, 3)
	b := Vec(-4, 0.5, 2)

	assert.Equal(t, Vec(-3, 2.5, 5), a.Add(b))
	assert.Equal(t, Vec(5, 1.5, 1), a.Sub(b))
	assert.Equal(t, Vec(2, 4, 6), a.Scale(2))
	assert.InDelta(t, -4+1+6, a.Dot(b), eps)
	assert.Equal(t, ZAxis, XAxis.Cross(YAxis))
	assert.InDelta(t, math.Sqrt(14), a.Length(), eps)
	assert.InDelta(t, 5, Vec(0, 3, 4).Distance(Zero), eps)
}

func TestUnitGuardsZeroLength(t *testing.T) {
	u, ok := Zero.Unit()
	assert.False(t, ok)
	assert.True(t, u.IsZero())

	u, ok = Vec(0, 0, 7).Unit()
	require.True(t, ok)
	assert.Equal(t, ZAxis, u)

	_, ok = Vec(math.NaN(), 0, 0).Unit()
	assert.False(t, ok)
}

func TestAngleBetween(t *testing.T) {
	assert.InDelta(t, math.Pi/2, AngleBetween(XAxis, YAxis), eps)
	assert.InDelta(t, math.Pi, AngleBetween(XAxis, XAxis.Neg()), eps)
	assert.Zero(t, AngleBetween(XAxis, Zero))
}

func TestRepresentRotationAcceptsNonUnitAxis(t *testing.T) {
	q := RepresentRotation(math.Pi/2, 0, 0, 10)
	got := q.Transform(XAxis)
	assert.True(t, got.ApproxEqual(YAxis, 1e-12), "got %v", got)
	assert.InDelta(t, 1, q.Magnitude(), eps)

	assert.True(t, RepresentRotation(1, 0, 0, 0).ApproxEqual(Identity(), eps))
}

func TestCompositionOrder(t *testing.T) {
	// Yaw a quarter turn, then pitch in the agent frame versus in absolute space.
	yaw := RepresentRotation(math.Pi/2, 0, 0, 1)
	pitch := RepresentRotation(-math.Pi/2, 0, 1, 0)

	local := yaw.Multiply(pitch)
	absolute := pitch.Multiply(yaw)

	assert.True(t, local.Facing().ApproxEqual(ZAxis, 1e-12), "local %v", local.Facing())
	assert.True(t, absolute.Facing().ApproxEqual(YAxis, 1e-12), "absolute %v", absolute.Facing())
}

func TestRandomUniformStaysUnit(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	q := Identity()
	for i := 0; i < 10000; i++ {
		q = q.Multiply(RandomUniform(r))
		require.InDelta(t, 1, q.Magnitude(), 1e-9)
	}
}

func TestRandomUniformHasNoPolarBias(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	const n = 20000
	var polar int
	for i := 0; i < n; i++ {
		f := RandomUniform(r).Facing()
		// A uniform direction has |z| > 0.9 with probability 0.1.
		if math.Abs(f.Z) > 0.9 {
			polar++
		}
	}
	frac := float64(polar) / n
	assert.InDelta(t, 0.1, frac, 0.015)
}

func TestEulerAngles(t *testing.T) {
	roll, pitch, yaw := RepresentRotation(0.3, 0, 0, 1).ToEulerAngles()
	assert.InDelta(t, 0, roll, eps)
	assert.InDelta(t, 0, pitch, eps)
	assert.InDelta(t, 0.3, yaw, eps)

	roll, _, _ = RepresentRotation(-0.7, 1, 0, 0).ToEulerAngles()
	assert.InDelta(t, -0.7, roll, eps)
}
