package parsim

import (
	"math"
)

// ComputeForces applies one step of gravitational acceleration to the
// velocities of every particle in ps.
func ComputeForces(ps []Particle) {
	computeForces(ps, 0, len(ps))
}

// computeForces updates the velocities of the particles in [low, high).
// Only positions and masses are read and only velocities are written, so
// disjoint ranges can be processed concurrently against the same slice.
func computeForces(ps []Particle, low, high int) {
	for i := low; i < high; i++ {
		pi := &ps[i]
		fx, fy := 0.0, 0.0

		for j := range ps {
			if i == j {
				continue
			}
			pj := &ps[j]

			dx := pj.X - pi.X
			dy := pj.Y - pi.Y
			dist2 := float64(dx*dx) + float64(dy*dy) + Epsilon2
			invDist3 := 1.0 / float64(dist2*math.Sqrt(dist2))

			fx += float64(G * pi.M * pj.M * dx * invDist3)
			fy += float64(G * pi.M * pj.M * dy * invDist3)
		}

		pi.Vx += float64(fx / pi.M * DeltaT)
		pi.Vy += float64(fy / pi.M * DeltaT)
	}
}
