package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/phil-mansfield/parsim"
	pio "github.com/phil-mansfield/parsim/io"
	"github.com/phil-mansfield/parsim/render"
)

const usage = "Usage: parsim [flags] <seed> <side> <ncside> <n_part> <steps>"

// Exit codes.
const (
	exitOK = iota
	exitUsage
	exitParameter
	exitAllocation
	exitIO
	exitMismatch
)

type options struct {
	config, compare         string
	trace, plot, cpuProfile string
	workers                 int
	exampleConfig, logFlag  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	opt := &options{}
	fs := flag.NewFlagSet("parsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(
		&opt.config, "Config", "",
		"Configuration file for a run. Positional arguments are optional "+
			"when this is set and override the file's values.",
	)
	fs.BoolVar(
		&opt.exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout.",
	)
	fs.StringVar(
		&opt.compare, "Compare", "",
		"Comma-separated pair of trace files. Exits with status 0 if the "+
			"traces are identical.",
	)
	fs.IntVar(&opt.workers, "Workers", 0, "Number of worker goroutines.")
	fs.StringVar(&opt.trace, "Trace", "", "Writes a per-step trace file.")
	fs.StringVar(
		&opt.plot, "Plot", "", "Plots the trace file to this image. "+
			"Requires -Trace.",
	)
	fs.StringVar(&opt.cpuProfile, "CPUProfile", "", "Writes a CPU profile.")
	fs.BoolVar(&opt.logFlag, "Log", false, "Logs progress to stderr.")

	flagArgs, posArgs := splitArgs(fs, args)
	if err := fs.Parse(flagArgs); err != nil {
		return exitUsage
	}
	posArgs = append(fs.Args(), posArgs...)

	modeName, err := getModeName(opt)
	if err != nil {
		return fail(stderr, parsim.UsageErrorf("%s", err.Error()))
	}

	switch modeName {
	case "ExampleConfig":
		fmt.Fprintln(stdout, pio.ExampleRunFile)
		return exitOK
	case "Compare":
		return compareMain(opt, stdout, stderr)
	case "Run":
		return runMain(opt, posArgs, stdout, stderr)
	default:
		panic("Impossible")
	}
}

func getModeName(opt *options) (string, error) {
	setNames := []string{}
	if opt.exampleConfig {
		setNames = append(setNames, "ExampleConfig")
	}
	if opt.compare != "" {
		setNames = append(setNames, "Compare")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but parsim only accepts "+
				"one of them at a time.", strings.Join(setNames, ", "),
		)
	} else if len(setNames) == 0 {
		return "Run", nil
	}
	return setNames[0], nil
}

func runMain(opt *options, args []string, stdout, stderr io.Writer) int {
	con, err := runConfig(opt, args)
	if err != nil {
		return fail(stderr, err)
	}

	if con.ValidProfileFile() {
		f, err := os.Create(con.ProfileFile)
		if err != nil {
			return fail(stderr, err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fail(stderr, err)
		}
		defer pprof.StopCPUProfile()
	}

	p := con.Params()
	if err := p.Validate(); err != nil {
		return fail(stderr, err)
	}

	simOpts := []parsim.Option{parsim.Log(con.Log)}
	if con.ValidWorkers() {
		simOpts = append(simOpts, parsim.Workers(con.Workers))
	}

	var tb *pio.TraceBuffer
	if con.ValidTraceFile() {
		tb, err = pio.NewTraceBuffer(con.TraceFile, pio.DefaultTraceBufLen)
		if err != nil {
			return fail(stderr, err)
		}
		defer tb.Close()
		simOpts = append(simOpts, parsim.Trace(tb))
	}

	sim, err := parsim.NewSimulation(p, simOpts...)
	if err != nil {
		return fail(stderr, err)
	}
	res, err := sim.Run()
	if err != nil {
		return fail(stderr, err)
	}

	if tb != nil {
		if err := tb.Close(); err != nil {
			return fail(stderr, err)
		}
	}

	if err := pio.WriteResult(stdout, res); err != nil {
		return fail(stderr, err)
	}

	if con.ValidPlotFile() {
		tr, err := pio.ReadTrace(con.TraceFile)
		if err != nil {
			return fail(stderr, err)
		}
		if err := render.PlotTrace(tr, p.Side, con.PlotFile); err != nil {
			return fail(stderr, err)
		}
		render.Execute()
	}

	return exitOK
}

// runConfig combines the config file, positional arguments, and flags into
// a single RunConfig. Flags take precedence over positional arguments, which
// take precedence over the config file.
func runConfig(opt *options, args []string) (*pio.RunConfig, error) {
	var con *pio.RunConfig
	if opt.config != "" {
		var err error
		if con, err = pio.ReadRunConfig(opt.config); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return applyFlags(opt, con)
		}
	} else {
		con = &pio.DefaultRunWrapper().Run
	}

	p, err := parseArgs(args)
	if err != nil {
		return nil, err
	}
	con.Seed, con.Side, con.NCSide = p.Seed, p.Side, p.NCSide
	con.Particles, con.Steps = p.Particles, p.Steps

	return applyFlags(opt, con)
}

func applyFlags(opt *options, con *pio.RunConfig) (*pio.RunConfig, error) {
	if opt.workers != 0 {
		if opt.workers < 0 {
			return nil, parsim.UsageErrorf(
				"-Workers must be positive, but is %d.", opt.workers,
			)
		}
		con.Workers = opt.workers
	}
	if opt.trace != "" {
		con.TraceFile = opt.trace
	}
	if opt.plot != "" {
		con.PlotFile = opt.plot
	}
	if opt.cpuProfile != "" {
		con.ProfileFile = opt.cpuProfile
	}
	con.Log = con.Log || opt.logFlag

	if con.ValidPlotFile() && !con.ValidTraceFile() {
		return nil, parsim.UsageErrorf("-Plot requires -Trace.")
	}
	return con, nil
}

// parseArgs parses the five positional arguments. It only checks that they
// are well-formed; parsim.Params.Validate checks that they make sense.
func parseArgs(args []string) (parsim.Params, error) {
	p := parsim.Params{}
	if len(args) != 5 {
		return p, parsim.UsageErrorf(
			"Expected 5 positional arguments, but got %d.", len(args),
		)
	}

	var err error
	ints := []struct {
		name string
		idx  int
		ptr  *int64
	}{
		{"seed", 0, &p.Seed},
		{"ncside", 2, &p.NCSide},
		{"n_part", 3, &p.Particles},
		{"steps", 4, &p.Steps},
	}
	for _, arg := range ints {
		*arg.ptr, err = strconv.ParseInt(args[arg.idx], 10, 64)
		if err != nil {
			return p, parsim.UsageErrorf(
				"Could not parse <%s> value '%s' as an integer.",
				arg.name, args[arg.idx],
			)
		}
	}

	p.Side, err = strconv.ParseFloat(args[1], 64)
	if err != nil {
		return p, parsim.UsageErrorf(
			"Could not parse <side> value '%s' as a number.", args[1],
		)
	}

	return p, nil
}

// splitArgs separates flags from positional arguments. The standard flag
// package would read a negative seed as an unknown flag, so the first
// argument which is a number or does not start with a dash (and is not the
// value of a preceding flag) begins the positional arguments.
func splitArgs(fs *flag.FlagSet, args []string) (flags, pos []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args[:i], args[i+1:]
		} else if !strings.HasPrefix(arg, "-") || isNumber(arg) {
			return args[:i], args[i:]
		}

		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			continue
		}
		i++
	}
	return args, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func compareMain(opt *options, stdout, stderr io.Writer) int {
	files := strings.Split(opt.compare, ",")
	if len(files) != 2 {
		return fail(stderr, parsim.UsageErrorf(
			"-Compare takes two comma-separated files, but got '%s'.",
			opt.compare,
		))
	}

	tr1, err := pio.ReadTrace(files[0])
	if err != nil {
		return fail(stderr, err)
	}
	tr2, err := pio.ReadTrace(files[1])
	if err != nil {
		return fail(stderr, err)
	}

	if row, differ := tr1.Diff(tr2); differ {
		fmt.Fprintf(stdout, "Traces first differ at row %d.\n", row)
		return exitMismatch
	}
	fmt.Fprintf(stdout, "Traces are identical over %d steps.\n", tr1.Len())
	return exitOK
}

// fail reports err and returns the exit code for its kind.
func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "parsim: %s\n", err.Error())

	switch {
	case errors.Is(err, parsim.ErrUsage):
		fmt.Fprintln(stderr, usage)
		return exitUsage
	case errors.Is(err, parsim.ErrParameter):
		return exitParameter
	case errors.Is(err, parsim.ErrAllocation):
		return exitAllocation
	default:
		return exitIO
	}
}
