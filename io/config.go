package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/parsim"
)

const (
	ExampleRunFile = `[Run]

#######################
# Required Parameters #
#######################

# Seed for the initial conditions. Non-negative seeds draw positions,
# velocities, and masses uniformly. Negative seeds draw them from a normal
# distribution centered on the middle of the box instead. Only the lowest 32
# bits are used.
Seed = 1

# Width of the periodic box.
Side = 1000

# Grid density. Initial velocities scale as Side / NCSide and masses scale as
# NCSide^2 / Particles.
NCSide = 10

# Number of particles and number of time steps.
Particles = 2
Steps = 1

#######################
# Optional Parameters #
#######################

# Number of worker goroutines. Defaults to the number of CPUs. Results do not
# depend on this value.
# Workers = 4

# Writes the state of particle 0 and the collision counts after every step to
# a text file.
# TraceFile = trace.txt

# Renders TraceFile to an image. Requires TraceFile and a Python installation
# with matplotlib.
# PlotFile = trace.png

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# Log = true`
)

type RunConfig struct {
	// Required
	Seed                     int64
	Side                     float64
	NCSide, Particles, Steps int64

	// Optional
	Workers                          int
	TraceFile, PlotFile, ProfileFile string
	Log                              bool
}

type RunWrapper struct {
	Run RunConfig
}

// DefaultRunWrapper returns a wrapper whose required fields are all invalid,
// so that missing values can be detected after reading a file.
func DefaultRunWrapper() *RunWrapper {
	con := RunConfig{}
	con.Side = -1
	con.NCSide = -1
	con.Particles = -1
	con.Steps = -1
	return &RunWrapper{con}
}

func (con *RunConfig) ValidSide() bool { return con.Side > 0 }
func (con *RunConfig) ValidNCSide() bool { return con.NCSide > 0 }
func (con *RunConfig) ValidParticles() bool { return con.Particles >= 0 }
func (con *RunConfig) ValidSteps() bool { return con.Steps >= 0 }
func (con *RunConfig) ValidWorkers() bool { return con.Workers > 0 }
func (con *RunConfig) ValidTraceFile() bool { return con.TraceFile != "" }
func (con *RunConfig) ValidPlotFile() bool { return con.PlotFile != "" }
func (con *RunConfig) ValidProfileFile() bool { return con.ProfileFile != "" }

// CheckInit reports the first required value which is missing or invalid.
func (con *RunConfig) CheckInit() error {
	if !con.ValidSide() {
		return fmt.Errorf("Invalid/non-existent 'Side' value.")
	} else if !con.ValidNCSide() {
		return fmt.Errorf("Invalid/non-existent 'NCSide' value.")
	} else if !con.ValidParticles() {
		return fmt.Errorf("Invalid/non-existent 'Particles' value.")
	} else if !con.ValidSteps() {
		return fmt.Errorf("Invalid/non-existent 'Steps' value.")
	} else if con.ValidPlotFile() && !con.ValidTraceFile() {
		return fmt.Errorf("'PlotFile' is set, but 'TraceFile' is not.")
	}
	return nil
}

// Params converts the config's required values into simulation parameters.
func (con *RunConfig) Params() parsim.Params {
	return parsim.Params{
		Seed:      con.Seed,
		Side:      con.Side,
		NCSide:    con.NCSide,
		Particles: con.Particles,
		Steps:     con.Steps,
	}
}

// ReadRunConfig reads and checks a [Run] config file.
func ReadRunConfig(fname string) (*RunConfig, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Run.CheckInit(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return &wrap.Run, nil
}

// ParseRunConfig is ReadRunConfig for config text which is already in memory.
func ParseRunConfig(text string) (*RunConfig, error) {
	wrap := DefaultRunWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return nil, err
	}
	if err := wrap.Run.CheckInit(); err != nil {
		return nil, err
	}
	return &wrap.Run, nil
}
