package game

import (
	"math/rand/v2"

	"github.com/tmak94/legallynotset/internal/game/triad"
)

// RNG abstracts random number generation for deterministic testing.
// *rand.Rand from math/rand/v2 satisfies it.
type RNG interface {
	// IntN returns a non-negative random int in [0, n).
	IntN(n int) int
}

// NewRNG returns a PCG-backed RNG. A zero seed draws a random one.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(rng RNG, ids []triad.Identity) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
