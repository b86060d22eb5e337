package parsim

// UpdatePositions moves every particle along its velocity for one time step
// and wraps it back into the periodic box [0, side) x [0, side).
func UpdatePositions(ps []Particle, side float64) {
	updatePositions(ps, side, 0, len(ps))
}

func updatePositions(ps []Particle, side float64, low, high int) {
	for i := low; i < high; i++ {
		p := &ps[i]
		p.X = wrap(p.X+float64(p.Vx*DeltaT), side)
		p.Y = wrap(p.Y+float64(p.Vy*DeltaT), side)
	}
}

// wrap applies at most one periodic correction. Coordinates more than one
// box width outside of [0, side) are not fully wrapped; initial velocities
// are scaled to side/ncside, so displacements stay well below one box width.
func wrap(x, side float64) float64 {
	if x < 0 {
		x += side
	}
	if x >= side {
		x -= side
	}
	return x
}

// dist2 returns the squared (non-periodic) distance between two particles.
func dist2(p1, p2 *Particle) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return float64(dx*dx) + float64(dy*dy)
}
