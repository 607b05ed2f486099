package grid

import (
	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
)

func nextOnset(cells []model.NoteCell, row int) int {
	for r := row + 1; r < len(cells); r++ {
		if cells[r].IsOnset() {
			return r
		}
	}
	return -1
}

// InferDurations fills in every onset cell that has no explicit duration.
// The span runs, along the shared beat column, to the voice's next onset;
// sustain cells in between belong to the note. Without a later onset the
// span runs one beat past the final row.
//
// An explicit duration may not reach past the next onset.
func InferDurations(g *model.Grid) error {
	if len(g.Beats) == 0 {
		return nil
	}
	last := g.Beats[len(g.Beats)-1]

	for v := range g.Voices {
		cells := g.Voices[v].Cells
		for r := range cells {
			if !cells[r].IsOnset() {
				continue
			}
			next := nextOnset(cells, r)
			var span float64
			if next >= 0 {
				span = g.Beats[next] - g.Beats[r]
			} else {
				span = last + 1 - g.Beats[r]
			}
			span = util.Round(span, constants.BeatPrecision)

			if !cells[r].ExplicitDuration {
				cells[r].Duration = span
				continue
			}
			if next >= 0 && cells[r].Duration > span+constants.DurationTolerance {
				return parseErrorf(g.Lines[r],
					"%v lasts %v beats in voice %v but the next onset is %v beats away",
					cells[r].Token,
					util.FormatNumber(cells[r].Duration, 3),
					g.Voices[v].Label,
					util.FormatNumber(span, 3))
			}
		}
	}
	return nil
}
