package render

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/parsim/io"
)

// PlotTrace queues two figures built from a trace: the trajectory of
// particle 0 through the periodic box, written to fname, and the cumulative
// collision and per-step contact counts, written next to it with a
// "_collisions" suffix. Nothing is rendered until Execute is called.
func PlotTrace(tr *io.Trace, side float64, fname string) error {
	if tr.Len() == 0 {
		return fmt.Errorf("Cannot plot an empty trace.")
	}

	segs := Segments(tr.X, tr.Y, side)
	if len(segs) == 0 {
		return fmt.Errorf("Trace has no particle 0 to plot.")
	}

	plt.Figure()
	for _, seg := range segs {
		plt.Plot(seg.X, seg.Y, "k", plt.LW(2))
	}
	last := tr.Len() - 1
	plt.Plot([]float64{tr.X[0]}, []float64{tr.Y[0]}, "og")
	plt.Plot([]float64{tr.X[last]}, []float64{tr.Y[last]}, "or")

	plt.Title(fmt.Sprintf("Particle 0, %d steps", tr.Len()))
	plt.XLabel(`$x$`, plt.FontSize(16))
	plt.YLabel(`$y$`, plt.FontSize(16))
	plt.XLim(0, side)
	plt.YLim(0, side)
	plt.SaveFig(fname)

	plt.Figure()
	plt.Plot(tr.Step, tr.Collisions, "k", plt.LW(3))
	plt.Plot(tr.Step, tr.Contacts, "r", plt.LW(1))
	plt.Title(fmt.Sprintf(
		"%g collisions after %d steps", tr.Collisions[last], tr.Len(),
	))
	plt.XLabel("Step", plt.FontSize(16))
	plt.YLabel("Pairs", plt.FontSize(16))
	plt.SaveFig(CollisionFileName(fname))

	return nil
}

// Execute renders every queued figure.
func Execute() { plt.Execute() }

// Reset discards every queued figure.
func Reset() { plt.Reset() }

// CollisionFileName returns the name of the collision figure paired with a
// trajectory figure.
func CollisionFileName(fname string) string {
	ext := filepath.Ext(fname)
	return strings.TrimSuffix(fname, ext) + "_collisions" + ext
}

// Segment is a piece of a trajectory which does not cross a periodic
// boundary.
type Segment struct {
	X, Y []float64
}

// Segments splits a trajectory wherever consecutive points are more than
// half a box width apart along either axis, which is where a particle has
// wrapped. Points with NaN coordinates are skipped.
func Segments(xs, ys []float64, side float64) []Segment {
	segs := []Segment{}
	var cur *Segment

	for i := range xs {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			cur = nil
			continue
		}

		if cur != nil {
			n := len(cur.X) - 1
			if math.Abs(x-cur.X[n]) > side/2 || math.Abs(y-cur.Y[n]) > side/2 {
				cur = nil
			}
		}
		if cur == nil {
			segs = append(segs, Segment{})
			cur = &segs[len(segs)-1]
		}
		cur.X = append(cur.X, x)
		cur.Y = append(cur.Y, y)
	}

	return segs
}
