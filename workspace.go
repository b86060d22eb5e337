package parsim

// The workflow here is that each worker owns one workspace for the lifetime
// of a Simulation. During the force and position phases a worker writes only
// to particles in its contiguous [low, high) chunk. During the collision
// phase it scans every workers-th row of the pair triangle, starting at its
// id, so that the shrinking rows are spread evenly. Newly collided pairs are
// buffered in the workspace and merged by the Simulation after all workers
// have joined.
type workspace struct {
	id        int
	low, high int
	pending   []pairKey
}

// newWorkspaces splits n particles among the given number of workers.
func newWorkspaces(workers, n int) []workspace {
	ws := make([]workspace, workers)
	chunk := (n + workers - 1) / workers

	for id := range ws {
		ws[id].id = id
		ws[id].low = min(id*chunk, n)
		ws[id].high = min((id+1)*chunk, n)
	}
	return ws
}

func (w *workspace) computeForces(ps []Particle) {
	computeForces(ps, w.low, w.high)
}

func (w *workspace) updatePositions(ps []Particle, side float64) {
	updatePositions(ps, side, w.low, w.high)
}

func (w *workspace) scanCollisions(
	ct *CollisionTracker, ps []Particle, workers int,
) {
	w.pending = ct.scan(ps, w.id, workers, w.pending[:0])
}
