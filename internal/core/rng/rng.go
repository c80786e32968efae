// Package rng owns construction of the single seeded generator a simulation
// draws every random number from.
package rng

import (
	"math"
	"math/rand/v2"
)

const streamMix = 0x9e3779b97f4a7c15

// New returns a PCG generator for seed. Two generators built from the same
// seed produce the same sequence.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^streamMix))
}

// Sign returns +1 or -1 with equal probability.
func Sign(r *rand.Rand) float64 {
	if r.Uint64()&1 == 0 {
		return 1
	}
	return -1
}

// Angle returns a uniform angle in [0, 2*pi).
func Angle(r *rand.Rand) float64 {
	return r.Float64() * 2 * math.Pi
}

// Uniform returns a value in [lo, hi).
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Bernoulli reports true with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}
