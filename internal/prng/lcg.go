// Package prng holds the deterministic generator behind simulated readings.
//
// LCG reproduces the rand() of the newlib C library shipped with bare-metal
// RISC-V toolchains: a 64-bit linear congruential step whose high word is
// masked down to 31 bits.
package prng

const (
	multiplier = 6364136223846793005
	increment  = 1

	// DefaultSeed is the seed the simulator always starts from.
	DefaultSeed uint64 = 1

	// MaxDraw is the exclusive upper bound of Draw. It is one more than
	// newlib's RAND_MAX (2^31-1); readings are scaled by MaxDraw so their
	// upper bounds stay strict.
	MaxDraw = 1 << 31
)

// LCG is not safe for concurrent use. Each stream owns its own instance.
type LCG struct {
	state uint64
}

// New returns a generator seeded once with seed. There is no way to reseed.
func New(seed uint64) *LCG {
	return &LCG{state: seed}
}

// Draw advances the generator and returns a value in [0, MaxDraw).
func (g *LCG) Draw() uint32 {
	g.state = g.state*multiplier + increment

	return uint32(g.state>>32) & (MaxDraw - 1)
}
