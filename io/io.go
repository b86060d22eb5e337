/*
Package io handles everything a run reads from or writes to disk: run
configuration files, final results, and per-step trace files.

A trace file is a whitespace-separated text table with one row per step and
the columns

	step x0 y0 vx0 vy0 collisions contacts

where x0, y0, vx0, and vy0 describe particle 0 (NaN if there are no
particles), collisions is the cumulative number of distinct colliding pairs,
and contacts is the number of pairs within the collision radius during that
step. Floats are written with full precision, so two traces are identical if
and only if the runs which wrote them were identical.
*/
package io

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/parsim"
)

const (
	// DefaultTraceBufLen is the number of rows buffered before a flush.
	DefaultTraceBufLen = 1 << 10

	traceHeader = "# step x0 y0 vx0 vy0 collisions contacts\n"
	traceCols   = 7
)

type traceRow struct {
	step                 int64
	x, y, vx, vy         float64
	collisions, contacts int64
}

// TraceBuffer is a parsim.StepObserver which appends one row per step to a
// trace file. Rows are buffered in memory and written whenever the buffer
// fills, so a trace costs little I/O even for short steps.
type TraceBuffer struct {
	buf  []traceRow
	idx  int
	f    *os.File
	w    *bufio.Writer
	path string
}

var _ parsim.StepObserver = &TraceBuffer{}

// NewTraceBuffer creates (or truncates) the trace file at path.
func NewTraceBuffer(path string, bufLen int) (*TraceBuffer, error) {
	if bufLen <= 0 {
		bufLen = DefaultTraceBufLen
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	tb := &TraceBuffer{
		buf: make([]traceRow, bufLen), f: f, w: bufio.NewWriter(f), path: path,
	}
	if _, err := tb.w.WriteString(traceHeader); err != nil {
		f.Close()
		return nil, err
	}
	return tb, nil
}

// Path returns the file the buffer writes to.
func (tb *TraceBuffer) Path() string { return tb.path }

// ObserveStep appends the state after the given step to the buffer.
func (tb *TraceBuffer) ObserveStep(
	step int64, ps []parsim.Particle, collisions, contacts int64,
) error {
	row := traceRow{
		step: step, collisions: collisions, contacts: contacts,
		x: math.NaN(), y: math.NaN(), vx: math.NaN(), vy: math.NaN(),
	}
	if len(ps) > 0 {
		row.x, row.y, row.vx, row.vy = ps[0].X, ps[0].Y, ps[0].Vx, ps[0].Vy
	}

	tb.buf[tb.idx] = row
	tb.idx++
	if tb.idx == len(tb.buf) {
		return tb.Flush()
	}
	return nil
}

// Flush writes the contents of the buffer to the trace file. This is called
// automatically whenever the buffer fills.
func (tb *TraceBuffer) Flush() error {
	line := make([]byte, 0, 128)
	for _, row := range tb.buf[:tb.idx] {
		line = line[:0]
		line = strconv.AppendInt(line, row.step, 10)
		for _, x := range []float64{row.x, row.y, row.vx, row.vy} {
			line = append(line, ' ')
			line = strconv.AppendFloat(line, x, 'g', -1, 64)
		}
		line = append(line, ' ')
		line = strconv.AppendInt(line, row.collisions, 10)
		line = append(line, ' ')
		line = strconv.AppendInt(line, row.contacts, 10)
		line = append(line, '\n')

		if _, err := tb.w.Write(line); err != nil {
			return err
		}
	}
	tb.idx = 0
	return tb.w.Flush()
}

// Close flushes any buffered rows and closes the trace file. Closing a
// closed TraceBuffer does nothing.
func (tb *TraceBuffer) Close() error {
	if tb.f == nil {
		return nil
	}
	f := tb.f
	tb.f = nil

	if err := tb.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Trace is the column-wise contents of a trace file.
type Trace struct {
	Step, X, Y, Vx, Vy, Collisions, Contacts []float64
}

// ReadTrace reads a trace file written by a TraceBuffer.
func ReadTrace(fname string) (*Trace, error) {
	colIdxs := make([]int, traceCols)
	for i := range colIdxs {
		colIdxs[i] = i
	}

	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, err
	}
	if len(cols) != traceCols {
		return nil, fmt.Errorf(
			"Trace file %s has %d columns, but %d are required.",
			fname, len(cols), traceCols,
		)
	}

	return &Trace{
		Step: cols[0], X: cols[1], Y: cols[2], Vx: cols[3], Vy: cols[4],
		Collisions: cols[5], Contacts: cols[6],
	}, nil
}

// Len returns the number of steps in the trace.
func (tr *Trace) Len() int { return len(tr.Step) }

func (tr *Trace) columns() [][]float64 {
	return [][]float64{
		tr.Step, tr.X, tr.Y, tr.Vx, tr.Vy, tr.Collisions, tr.Contacts,
	}
}

// Diff returns the first step at which two traces differ, or ok = false if
// they are bit-for-bit identical. NaNs compare equal to one another.
func (tr *Trace) Diff(other *Trace) (step int, ok bool) {
	n := tr.Len()
	if other.Len() < n {
		n = other.Len()
	}

	c1, c2 := tr.columns(), other.columns()
	for i := 0; i < n; i++ {
		for j := range c1 {
			if !sameFloat(c1[j][i], c2[j][i]) {
				return i, true
			}
		}
	}

	if tr.Len() != other.Len() {
		return n, true
	}
	return 0, false
}

func sameFloat(x, y float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.IsNaN(x) && math.IsNaN(y)
	}
	return math.Float64bits(x) == math.Float64bits(y)
}
