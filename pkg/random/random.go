// Package random provides the random source shared by every draw the simulation makes.
package random

import (
	"math/rand"
	"time"
)

// Source is the set of draws the simulation needs. Each method consumes exactly
// one underlying draw.
type Source interface {
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// Uniform returns a uniform value in [lo,hi).
	Uniform(lo, hi float64) float64
	// IntRange returns a uniform integer in [lo,hi], both ends inclusive.
	IntRange(lo, hi int) int
	// Intn returns a uniform index in [0,n).
	Intn(n int) int
}

// Rand is a Source backed by math/rand.
type Rand struct {
	rng  *rand.Rand
	seed int64
}

// NewSeeded creates a source whose sequence is fully determined by seed
func NewSeeded(seed int64) *Rand {
	return &Rand{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// NewFromClock seeds a source from the wall clock. The seed is kept so a run
// can be replayed.
func NewFromClock() *Rand {
	return NewSeeded(time.Now().UnixNano())
}

// Seed returns the seed the source was created with
func (r *Rand) Seed() int64 {
	return r.seed
}

func (r *Rand) Float64() float64 {
	return r.rng.Float64()
}

func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.rng.Float64()
}

func (r *Rand) IntRange(lo, hi int) int {
	if hi < lo {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}
