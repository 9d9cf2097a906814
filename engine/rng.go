package engine

import "math/rand"

// Roller produces die results in [1, sides]. Combat takes a Roller so tests
// can inject fixed sequences.
type Roller interface {
	Roll(sides int) int
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, so a session seed plus position
// identifies every roll in the log.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	r.pos++
	return r.src.Intn(sides) + 1
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG creates an RNG and advances it to the given position.
// This reproduces the exact RNG state of a logged session.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}

// RollPool rolls n dice with the given number of sides.
func RollPool(r Roller, n, sides int) []int {
	if n < 0 {
		n = 0
	}
	dice := make([]int, n)
	for i := range dice {
		dice[i] = r.Roll(sides)
	}
	return dice
}
