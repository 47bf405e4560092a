// Package starfield generates deterministic per-planet starfields.
package starfield

// LCG constants. Changing any of them changes every rendered starfield.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280

	// Period is the cycle length of the generator. The constants satisfy the
	// Hull-Dobell conditions, so every state in [0, Period) is visited.
	Period = lcgModulus
)

// Source is a stream of pseudo-random values in [0, 1).
type Source interface {
	Next() float64
}

// LCG is a small-period linear congruential generator:
//
//	value = (value*9301 + 49297) mod 233280
//	out   = value / 233280
//
// The state starts at the seed, so the first draw already applies the
// recurrence to the seed. An LCG is owned by a single starfield generation and
// is not safe for concurrent use.
type LCG struct {
	value int64
	seed  int64
}

// NewLCG creates a generator for the given seed. Seeds outside [0, Period)
// are reduced modulo Period; negative seeds wrap around.
func NewLCG(seed int64) *LCG {
	s := normalizeSeed(seed)
	return &LCG{value: s, seed: s}
}

// Next advances the generator and returns a value in [0, 1).
func (l *LCG) Next() float64 {
	l.value = (l.value*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(l.value) / lcgModulus
}

// Seed returns the normalized seed the generator started from.
func (l *LCG) Seed() int64 {
	return l.seed
}

// State returns the current internal value.
func (l *LCG) State() int64 {
	return l.value
}

// Reset rewinds the generator to its initial seed.
func (l *LCG) Reset() {
	l.value = l.seed
}

func normalizeSeed(seed int64) int64 {
	s := seed % lcgModulus
	if s < 0 {
		s += lcgModulus
	}
	return s
}
