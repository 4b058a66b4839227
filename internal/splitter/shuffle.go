package splitter

import (
	"math/rand/v2"
)

// pcgIncrement is the fixed second PCG seed word; only the caller's seed varies.
const pcgIncrement = 0x9e3779b97f4a7c15

// Permute returns a copy of stems in a pseudo-random order determined only by seed.
// The order must not change between Go releases, so draws go through
// boundedDraw rather than rand.Shuffle.
func Permute(stems []string, seed int64) []string {
	out := append([]string(nil), stems...)
	src := rand.NewPCG(uint64(seed), pcgIncrement)

	for i := len(out) - 1; i > 0; i-- {
		j := int(boundedDraw(src, uint64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// boundedDraw returns a uniform value in [0, n) by rejection sampling.
func boundedDraw(src *rand.PCG, n uint64) uint64 {
	limit := -n % n // (2^64 - n) mod n
	for {
		v := src.Uint64()
		if v >= limit {
			return v % n
		}
	}
}
