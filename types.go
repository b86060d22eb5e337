package parsim

// Physical constants shared by every phase of a step. Products involving
// these are wrapped in explicit float64 conversions throughout the package so
// the compiler cannot fuse them into FMA instructions: runs must be
// bit-reproducible across architectures.
const (
	// G is the gravitational constant.
	G = 6.67408e-11
	// Epsilon2 is the squared softening length in the force kernel and the
	// squared collision radius in the collision tracker.
	Epsilon2 = 0.005 * 0.005
	// DeltaT is the fixed time step.
	DeltaT = 0.1
)

// Particle is a single body. Its identity is its index within the particle
// slice owned by a Simulation.
type Particle struct {
	X, Y   float64
	Vx, Vy float64
	M      float64
}

// Params are the immutable inputs of a single run.
type Params struct {
	// Seed selects the generator kind by its sign. See rand.KindForSeed.
	Seed int64
	// Side is the width of the toroidal box.
	Side float64
	// NCSide is the grid density, which scales initial velocities and masses.
	NCSide int64
	// Particles is the number of bodies.
	Particles int64
	// Steps is the number of time steps.
	Steps int64
}

// Validate checks that p describes a run which can be initialized without
// undefined arithmetic.
func (p *Params) Validate() error {
	if !(p.Side > 0) {
		return paramErrorf("Side must be positive, but is %g.", p.Side)
	} else if p.NCSide <= 0 {
		return paramErrorf("NCSide must be positive, but is %d.", p.NCSide)
	} else if p.Particles < 0 {
		return paramErrorf(
			"Particle count must be non-negative, but is %d.", p.Particles,
		)
	} else if p.Steps < 0 {
		return paramErrorf(
			"Step count must be non-negative, but is %d.", p.Steps,
		)
	} else if p.Particles > maxParticles {
		return allocErrorf(
			"Particle count %d exceeds the largest indexable count, %d.",
			p.Particles, int64(maxParticles),
		)
	}
	return nil
}
