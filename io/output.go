package io

import (
	"fmt"
	"io"

	"github.com/phil-mansfield/parsim"
)

// WriteResult writes the final position of particle 0 to three decimal
// places, followed by the total number of collisions. Runs without particles
// have no particle 0, so only the collision count is written.
func WriteResult(w io.Writer, res *parsim.Result) error {
	if res.HasParticle0 {
		_, err := fmt.Fprintf(w, "%.3f %.3f\n", res.X0, res.Y0)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d\n", res.Collisions)
	return err
}
