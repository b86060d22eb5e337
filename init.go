package parsim

import (
	"math"
	"runtime/debug"
	"unsafe"

	"github.com/phil-mansfield/parsim/rand"
)

// maxAllocBytes is the largest particle buffer allocParticles will attempt.
// It is the 48-bit heap address space of the runtime on 64-bit targets.
const maxAllocBytes = 1 << 48

// memoryLimit returns the number of bytes a particle buffer may occupy: the
// smallest of the runtime's soft memory limit and the limits the operating
// system places on the process. Tests replace it.
var memoryLimit = func() uint64 {
	limit := uint64(math.MaxUint64)
	if soft := debug.SetMemoryLimit(-1); soft < math.MaxInt64 {
		limit = uint64(soft)
	}
	if sys := systemMemory(); sys > 0 && sys < limit {
		limit = sys
	}
	return limit
}

// InitParticles creates n particles in a box of width side. The particles
// are a deterministic function of the arguments: each particle consumes
// exactly five draws, in the order x, y, vx, vy, m, from a generator whose
// kind is chosen by the sign of seed.
func InitParticles(seed int64, side float64, ncside, n int64) ([]Particle, error) {
	ps, err := allocParticles(n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return ps, nil
	}

	kind, seed := rand.KindForSeed(seed)
	gen := rand.New(seed)

	cells2 := float64(ncside * ncside)

	for i := range ps {
		p := &ps[i]
		p.X = float64(gen.Draw(kind) * side)
		p.Y = float64(gen.Draw(kind) * side)
		p.Vx = float64((gen.Draw(kind) - 0.5) * side) / float64(ncside) / 5.0
		p.Vy = float64((gen.Draw(kind) - 0.5) * side) / float64(ncside) / 5.0
		p.M = float64(float64(gen.Draw(kind)*0.01)*cells2) /
			float64(n) / G * Epsilon2
	}

	return ps, nil
}

// allocParticles allocates a zeroed particle buffer, reporting requests
// larger than the memory available to the process as ErrAllocation. The
// runtime aborts instead of returning when an allocation fails, so the check
// has to happen before make.
func allocParticles(n int64) ([]Particle, error) {
	if n < 0 {
		return nil, paramErrorf("Cannot allocate %d particles.", n)
	}
	size := int64(unsafe.Sizeof(Particle{}))
	if n > maxAllocBytes/size {
		return nil, allocErrorf(
			"%d particles require more than %d bytes.", n, int64(maxAllocBytes),
		)
	}

	need, avail := uint64(n*size), memoryLimit()
	if need > avail {
		return nil, allocErrorf(
			"%d particles require %d bytes, but only %d are available.",
			n, need, avail,
		)
	}
	return make([]Particle, n), nil
}
