package engine

import (
	"math/rand"
	"time"
)

// Rand is the uniform random source every engine draws from.
// *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform integer in [0, n). n must be positive.
	Intn(n int) int
}

// NewRand returns a deterministic source for the given seed
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// DefaultRand returns a time-seeded source. Each engine gets its own since
// *rand.Rand is not safe for concurrent use.
func DefaultRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle returns a uniformly random permutation of in using Fisher-Yates.
// The input slice is left untouched.
func Shuffle[T any](r Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Perm returns a shuffled 0..n-1
func Perm(r Rand, n int) []int {
	seq := make([]int, n)
	for i := range seq {
		seq[i] = i
	}
	return Shuffle(r, seq)
}

// Pick returns a uniformly chosen element, or false for an empty slice
func Pick[T any](r Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.Intn(len(items))], true
}
