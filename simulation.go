package parsim

import (
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// StepObserver is notified after every completed step. ps must not be
// retained or modified.
type StepObserver interface {
	ObserveStep(step int64, ps []Particle, collisions, contacts int64) error
}

// Simulation owns the particles and collision memo of a single run and
// advances them through a fixed number of steps.
type Simulation struct {
	params  Params
	ps      []Particle
	tracker *CollisionTracker

	state State
	step  int64

	// workspaces
	workers    int
	workspaces []workspace

	// io related things
	log bool
	ms  runtime.MemStats
	obs StepObserver
}

// Option configures a Simulation.
type Option func(sim *Simulation)

// Workers sets the size of the worker pool. Values below one are treated as
// one. Results do not depend on the number of workers.
func Workers(n int) Option {
	return func(sim *Simulation) { sim.workers = max(n, 1) }
}

// Log turns progress logging on or off.
func Log(flag bool) Option {
	return func(sim *Simulation) { sim.log = flag }
}

// Trace registers an observer which is called after every step.
func Trace(obs StepObserver) Option {
	return func(sim *Simulation) { sim.obs = obs }
}

// Result is the final state reported by a completed Simulation.
type Result struct {
	Steps      int64
	Collisions int64

	// HasParticle0 is false for runs with no particles, in which case X0 and
	// Y0 are meaningless.
	HasParticle0 bool
	X0, Y0       float64
}

// NewSimulation validates p and creates the initial particle distribution.
// Invalid parameters are reported with ErrParameter and oversized runs with
// ErrAllocation, in both cases before any particle exists.
func NewSimulation(p Params, opts ...Option) (*Simulation, error) {
	sim := &Simulation{params: p, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(sim)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	ps, err := InitParticles(p.Seed, p.Side, p.NCSide, p.Particles)
	if err != nil {
		return nil, err
	}
	sim.ps = ps
	sim.tracker = NewCollisionTracker()

	if sim.workers > len(ps) {
		sim.workers = max(len(ps), 1)
	}
	sim.workspaces = newWorkspaces(sim.workers, len(ps))

	if sim.log {
		log.Printf(
			"Initialized %d particles. Number of workers: %d",
			len(ps), sim.workers,
		)
		sim.logMemory()
	}

	if err := sim.transition(Initialized); err != nil {
		return nil, err
	}
	return sim, nil
}

// Step advances the simulation by one time step: forces, then positions,
// then collisions. Each phase finishes on every worker before the next one
// starts.
func (sim *Simulation) Step() error {
	if sim.step >= sim.params.Steps {
		return fmt.Errorf(
			"All %d steps of the simulation have already been run.",
			sim.params.Steps,
		)
	}
	if sim.state == Initialized {
		if err := sim.transition(Running); err != nil {
			return err
		}
	} else if sim.state != Running {
		return fmt.Errorf("Cannot step a simulation in state %s.", sim.state)
	}

	ps, side := sim.ps, sim.params.Side
	phases := []func(w *workspace) error{
		func(w *workspace) error { w.computeForces(ps); return nil },
		func(w *workspace) error { w.updatePositions(ps, side); return nil },
		func(w *workspace) error {
			w.scanCollisions(sim.tracker, ps, sim.workers)
			return nil
		},
	}
	for _, phase := range phases {
		if err := sim.forkJoin(phase); err != nil {
			return err
		}
	}

	for id := range sim.workspaces {
		sim.tracker.merge(sim.workspaces[id].pending)
	}
	sim.step++

	if sim.log && isPowTwo(sim.step) {
		log.Printf(
			"Finished step %d of %d. Collisions: %d",
			sim.step, sim.params.Steps, sim.tracker.Total(),
		)
	}

	if sim.obs != nil {
		contacts := CountContacts(ps)
		err := sim.obs.ObserveStep(sim.step, ps, sim.tracker.Total(), contacts)
		if err != nil {
			return err
		}
	}

	return nil
}

// Run executes every remaining step and returns the final result. A
// Simulation can only be run to completion once.
func (sim *Simulation) Run() (*Result, error) {
	if sim.state.IsTerminal() {
		return nil, fmt.Errorf("Simulation has already completed.")
	}

	for sim.step < sim.params.Steps {
		if err := sim.Step(); err != nil {
			return nil, err
		}
	}

	if err := sim.transition(Completed); err != nil {
		return nil, err
	}

	if sim.log {
		log.Printf(
			"Completed %d steps. Collisions: %d",
			sim.step, sim.tracker.Total(),
		)
		sim.logMemory()
	}

	return sim.Result(), nil
}

// Result reports particle 0 and the collision count as of the current step.
func (sim *Simulation) Result() *Result {
	res := &Result{Steps: sim.step, Collisions: sim.tracker.Total()}
	if len(sim.ps) > 0 {
		res.HasParticle0 = true
		res.X0, res.Y0 = sim.ps[0].X, sim.ps[0].Y
	}
	return res
}

// Particles returns a copy of the current particles.
func (sim *Simulation) Particles() []Particle {
	ps := make([]Particle, len(sim.ps))
	copy(ps, sim.ps)
	return ps
}

// Collisions returns the number of distinct pairs which have collided.
func (sim *Simulation) Collisions() int64 { return sim.tracker.Total() }

// CollidedPairs returns every pair which has collided, sorted.
func (sim *Simulation) CollidedPairs() []Pair { return sim.tracker.Set().Pairs() }

// StepIndex returns the number of completed steps.
func (sim *Simulation) StepIndex() int64 { return sim.step }

// State returns the simulation's lifecycle stage.
func (sim *Simulation) State() State { return sim.state }

// WorkerCount returns the size of the worker pool.
func (sim *Simulation) WorkerCount() int { return sim.workers }

// forkJoin runs f on every workspace concurrently and waits for all of them.
// It returns the first error any worker reported.
func (sim *Simulation) forkJoin(f func(w *workspace) error) error {
	if len(sim.workspaces) == 1 {
		return f(&sim.workspaces[0])
	}

	var g errgroup.Group
	for id := range sim.workspaces {
		w := &sim.workspaces[id]
		g.Go(func() error { return f(w) })
	}
	return g.Wait()
}

func (sim *Simulation) logMemory() {
	runtime.ReadMemStats(&sim.ms)
	log.Printf(
		"Alloc: %5d MB, Sys: %5d MB",
		sim.ms.Alloc>>20, sim.ms.Sys>>20,
	)
}

func isPowTwo(x int64) bool {
	for x&1 == 0 && x > 0 {
		x >>= 1
	}
	return x == 1
}
