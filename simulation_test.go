package parsim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulationEndToEnd(t *testing.T) {
	p := Params{Seed: 1, Side: 1000, NCSide: 10, Particles: 2, Steps: 1}
	sim, err := NewSimulation(p)
	require.NoError(t, err)
	assert.Equal(t, Initialized, sim.State())

	res, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, Completed, sim.State())

	require.True(t, res.HasParticle0)
	assert.InDelta(t, 786.8422804595807, res.X0, 1e-9)
	assert.InDelta(t, 26.60456872779435, res.Y0, 1e-9)
	assert.Equal(t, "786.842 26.605", fmt.Sprintf("%.3f %.3f", res.X0, res.Y0))
	assert.Equal(t, int64(0), res.Collisions)
	assert.Equal(t, int64(1), res.Steps)
}

// stepTotals records the cumulative collision count after every step.
type stepTotals struct {
	steps  []int64
	totals []int64
}

func (st *stepTotals) ObserveStep(
	step int64, ps []Particle, collisions, contacts int64,
) error {
	st.steps = append(st.steps, step)
	st.totals = append(st.totals, collisions)
	return nil
}

func TestSimulationDenseGolden(t *testing.T) {
	p := Params{Seed: 1, Side: 10, NCSide: 1, Particles: 1000, Steps: 10}
	obs := &stepTotals{}
	sim, err := NewSimulation(p, Workers(4), Trace(obs))
	require.NoError(t, err)

	res, err := sim.Run()
	require.NoError(t, err)

	assert.Equal(t, "7.111 0.778", fmt.Sprintf("%.3f %.3f", res.X0, res.Y0))
	assert.Equal(t, int64(4), res.Collisions)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, obs.steps)
	assert.Equal(t, []int64{0, 0, 1, 2, 2, 3, 4, 4, 4, 4}, obs.totals)
	assert.Equal(t,
		[]Pair{{86, 217}, {196, 778}, {397, 558}, {778, 828}},
		sim.CollidedPairs(),
	)
}

func TestSimulationWorkerIndependence(t *testing.T) {
	for _, seed := range []int64{2, -2} {
		p := Params{Seed: seed, Side: 2, NCSide: 1, Particles: 257, Steps: 6}

		var ref *Result
		var refPs []Particle
		var refPairs []Pair
		for _, workers := range []int{1, 2, 3, 8, 64, 1000} {
			sim, err := NewSimulation(p, Workers(workers))
			require.NoError(t, err)
			res, err := sim.Run()
			require.NoError(t, err)

			if ref == nil {
				ref, refPs, refPairs = res, sim.Particles(), sim.CollidedPairs()
				continue
			}
			assert.Equal(t, *ref, *res, "seed %d, workers %d", seed, workers)
			assert.Equal(t, refPs, sim.Particles())
			assert.Equal(t, refPairs, sim.CollidedPairs())
		}
		assert.True(t, ref.Collisions > 0, "seed %d", seed)
	}
}

func TestSimulationDeterminism(t *testing.T) {
	p := Params{Seed: -7, Side: 3, NCSide: 2, Particles: 100, Steps: 5}
	run := func() *Result {
		sim, err := NewSimulation(p)
		require.NoError(t, err)
		res, err := sim.Run()
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, run(), run())
}

func TestSimulationMonotoneCollisions(t *testing.T) {
	p := Params{Seed: 4, Side: 1, NCSide: 1, Particles: 150, Steps: 8}
	sim, err := NewSimulation(p, Workers(3))
	require.NoError(t, err)

	prev := int64(0)
	for sim.StepIndex() < p.Steps {
		require.NoError(t, sim.Step())
		assert.Equal(t, Running, sim.State())
		assert.True(t, sim.Collisions() >= prev)
		assert.Equal(t, int64(len(sim.CollidedPairs())), sim.Collisions())
		prev = sim.Collisions()
	}

	assert.Error(t, sim.Step(), "stepping past the end")

	res, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, prev, res.Collisions)
	assert.Equal(t, Completed, sim.State())

	_, err = sim.Run()
	assert.Error(t, err, "running twice")
}

func TestSimulationNoParticles(t *testing.T) {
	p := Params{Seed: 1, Side: 10, NCSide: 1, Particles: 0, Steps: 3}
	sim, err := NewSimulation(p, Workers(4))
	require.NoError(t, err)
	assert.Equal(t, 1, sim.WorkerCount())

	res, err := sim.Run()
	require.NoError(t, err)
	assert.False(t, res.HasParticle0)
	assert.Equal(t, int64(0), res.Collisions)
	assert.Equal(t, int64(3), res.Steps)
	assert.Empty(t, sim.Particles())
}

func TestSimulationZeroSteps(t *testing.T) {
	p := Params{Seed: 1, Side: 1000, NCSide: 10, Particles: 2, Steps: 0}
	sim, err := NewSimulation(p)
	require.NoError(t, err)

	res, err := sim.Run()
	require.NoError(t, err)
	assert.Equal(t, Completed, sim.State())
	assert.Equal(t, 787.6072750422031, res.X0)
	assert.Equal(t, 26.087507984698387, res.Y0)
}

func TestSimulationInvalid(t *testing.T) {
	_, err := NewSimulation(Params{Side: -1, NCSide: 1, Particles: 1})
	assert.True(t, errors.Is(err, ErrParameter))

	_, err = NewSimulation(Params{Side: 1, NCSide: 0, Particles: 1})
	assert.True(t, errors.Is(err, ErrParameter))

	_, err = NewSimulation(Params{Side: 1, NCSide: 1, Particles: -5})
	assert.True(t, errors.Is(err, ErrParameter))

	_, err = NewSimulation(Params{Side: 1, NCSide: 1, Particles: 1 << 45})
	assert.True(t, errors.Is(err, ErrAllocation))
}

type failingObserver struct{ after int64 }

func (fo failingObserver) ObserveStep(
	step int64, ps []Particle, collisions, contacts int64,
) error {
	if step >= fo.after {
		return fmt.Errorf("Observer failed on step %d.", step)
	}
	return nil
}

func TestSimulationObserverError(t *testing.T) {
	p := Params{Seed: 1, Side: 10, NCSide: 1, Particles: 4, Steps: 5}
	sim, err := NewSimulation(p, Trace(failingObserver{2}))
	require.NoError(t, err)

	_, err = sim.Run()
	assert.Error(t, err)
	assert.Equal(t, int64(2), sim.StepIndex())
}

func TestForkJoinError(t *testing.T) {
	for _, workers := range []int{1, 4} {
		p := Params{Seed: 1, Side: 10, NCSide: 1, Particles: 8, Steps: 1}
		sim, err := NewSimulation(p, Workers(workers))
		require.NoError(t, err)

		visited := make([]bool, len(sim.workspaces))
		err = sim.forkJoin(func(w *workspace) error {
			visited[w.id] = true
			if w.id == len(visited)-1 {
				return fmt.Errorf("Worker %d failed.", w.id)
			}
			return nil
		})
		assert.EqualError(t, err, fmt.Sprintf("Worker %d failed.", workers-1))
		for id := range visited {
			assert.True(t, visited[id], "worker %d did not run", id)
		}

		assert.NoError(t, sim.forkJoin(func(w *workspace) error { return nil }))
	}
}

func TestStateTransitions(t *testing.T) {
	sim := &Simulation{}
	assert.Equal(t, Uninitialized, sim.State())
	assert.Error(t, sim.transition(Running))
	assert.NoError(t, sim.transition(Initialized))
	assert.NoError(t, sim.transition(Running))
	assert.Error(t, sim.transition(Initialized))
	assert.NoError(t, sim.transition(Completed))
	assert.True(t, sim.State().IsTerminal())
	assert.Error(t, sim.transition(Running))
	assert.Equal(t, "State(9)", State(9).String())
}

func TestNewWorkspaces(t *testing.T) {
	ws := newWorkspaces(3, 10)
	assert.Equal(t, 0, ws[0].low)
	assert.Equal(t, 4, ws[0].high)
	assert.Equal(t, 4, ws[1].low)
	assert.Equal(t, 8, ws[1].high)
	assert.Equal(t, 8, ws[2].low)
	assert.Equal(t, 10, ws[2].high)

	ws = newWorkspaces(4, 5)
	assert.Equal(t, 4, ws[2].low)
	assert.Equal(t, 5, ws[2].high)
	assert.Equal(t, 5, ws[3].low)
	assert.Equal(t, 5, ws[3].high)
	for id := range ws {
		assert.Equal(t, id, ws[id].id)
	}
}

func TestIsPowTwo(t *testing.T) {
	for _, x := range []int64{1, 2, 4, 1024} {
		assert.True(t, isPowTwo(x))
	}
	for _, x := range []int64{0, 3, 6, 1000} {
		assert.False(t, isPowTwo(x))
	}
}

func BenchmarkSimulationStep(b *testing.B) {
	p := Params{Seed: 1, Side: 10, NCSide: 1, Particles: 1000, Steps: int64(b.N)}
	sim, _ := NewSimulation(p)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sim.Step()
	}
}
