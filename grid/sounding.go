package grid

import (
	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
)

// SoundingOnset finds the row whose note voice is holding at row: the nearest
// onset at or above the row whose [start, start+duration) covers the row's
// beat. A rest onset, or an onset that has already ended, means the voice is
// silent. Durations must already be inferred.
func SoundingOnset(g *model.Grid, row, voice int) (int, bool) {
	beat := g.Beats[row]
	cells := g.Voices[voice].Cells
	for r := row; r >= 0; r-- {
		switch cells[r].Kind {
		case model.Sustain:
			continue
		case model.Rest:
			return r, false
		}
		start := g.Beats[r]
		if start <= beat && beat < NoteEnd(g, r, voice) {
			return r, true
		}
		return r, false
	}
	return -1, false
}

// NoteEnd is the beat at which the onset at row stops sounding.
func NoteEnd(g *model.Grid, row, voice int) float64 {
	return util.Round(g.Beats[row]+g.Voices[voice].Cells[row].Duration, constants.BeatPrecision)
}

func Sounding(g *model.Grid, row, voice int) (uint8, bool) {
	onset, ok := SoundingOnset(g, row, voice)
	if !ok {
		return 0, false
	}
	return g.Voices[voice].Cells[onset].Pitch, true
}

// SoundingMatrix resolves every row for every voice, indexed [row][voice].
func SoundingMatrix(g *model.Grid) [][]model.SoundingNote {
	res := make([][]model.SoundingNote, g.NumRows())
	for r := range res {
		res[r] = make([]model.SoundingNote, len(g.Voices))
		for v := range g.Voices {
			p, ok := Sounding(g, r, v)
			res[r][v] = model.SoundingNote{Pitch: p, Sounding: ok}
		}
	}
	return res
}
