/*
Package rand implements the reproducible xorshift generator used to seed
particle initial conditions.

A Generator's entire state is a single uint32 which is threaded through every
draw. There is no package-level state, so independent simulations (and tests)
can run side by side without interfering with one another. For a fixed seed
and a fixed sequence of draws, the returned values are identical on every
platform.
*/
package rand

import (
	"fmt"
	"math"
)

const (
	// seedOffset is added to user seeds before the first draw.
	seedOffset = 987654321
	// uniformScale maps the sum of two signed 32-bit words onto [0, 1).
	uniformScale = 0.2328306e-9

	normalMean  = 0.5
	normalWidth = 0.15
)

// Kind specifies which distribution a Generator draws from when used through
// Draw.
type Kind uint8

const (
	// Uniform draws are (approximately) uniform on [0, 1).
	Uniform Kind = iota
	// Normal draws are Box-Muller normals centered on 0.5 with a width of
	// 0.15, rejected and redrawn until they land in [0, 1).
	Normal
)

func (k Kind) String() string {
	switch k {
	case Uniform:
		return "Uniform"
	case Normal:
		return "Normal"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindForSeed selects the draw kind associated with a user seed. Negative
// seeds select Normal draws and are negated before use.
func KindForSeed(seed int64) (Kind, int64) {
	if seed < 0 {
		return Normal, -seed
	}
	return Uniform, seed
}

// Generator is an xorshift generator with an explicit 32-bit state.
type Generator struct {
	state uint32
}

// New returns a Generator initialized with the given seed.
func New(seed int64) *Generator {
	gen := &Generator{}
	gen.Init(seed)
	return gen
}

// Init resets the generator's state. Only the low 32 bits of seed are used.
func (gen *Generator) Init(seed int64) {
	gen.state = uint32(int32(seed)) + seedOffset
}

// State returns the generator's current state.
func (gen *Generator) State() uint32 { return gen.state }

// Uniform01 returns the next uniform draw in [0, 1) and advances the state.
func (gen *Generator) Uniform01() float64 {
	prev := gen.state

	s := gen.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	gen.state = s

	// The int32 sum wraps; that wrap is what keeps the result in [0, 1).
	sum := int32(prev) + int32(s)
	return normalMean + float64(uniformScale*float64(sum))
}

// Normal01 returns the next accepted normal draw in [0, 1). Every attempt
// consumes two uniform draws and there is no bound on the number of attempts.
func (gen *Generator) Normal01() float64 {
	for {
		u1 := gen.Uniform01()
		u2 := gen.Uniform01()
		z := float64(math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2))
		result := normalMean + float64(normalWidth*z)
		if result >= 0 && result < 1 {
			return result
		}
	}
}

// Draw returns the next value of the given kind.
func (gen *Generator) Draw(k Kind) float64 {
	switch k {
	case Uniform:
		return gen.Uniform01()
	case Normal:
		return gen.Normal01()
	}
	panic(fmt.Sprintf("Unrecognized generator kind, %s.", k))
}
