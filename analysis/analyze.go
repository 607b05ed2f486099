package analysis

import (
	"github.com/jsphweid/midgrid/grid"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
)

const (
	MotionOblique  = "oblique"
	MotionContrary = "contrary"
	MotionParallel = "parallel"
	MotionSimilar  = "similar"
	MotionUnknown  = "unknown"
	MotionNone     = "n/a"

	RestInterval = "rest"
)

// Motion classifies how a pair of voices moved from prev to cur. first marks
// the opening row, which has nothing to compare against.
func Motion(prev, cur [2]model.SoundingNote, first bool) string {
	if !cur[0].Sounding || !cur[1].Sounding {
		return MotionNone
	}
	if first {
		return MotionUnknown
	}
	if !prev[0].Sounding || !prev[1].Sounding {
		return MotionNone
	}
	d0 := int(cur[0].Pitch) - int(prev[0].Pitch)
	d1 := int(cur[1].Pitch) - int(prev[1].Pitch)
	switch {
	case d0 == 0 || d1 == 0:
		return MotionOblique
	case util.Sign(d0) != util.Sign(d1):
		return MotionContrary
	case d0 == d1:
		return MotionParallel
	}
	return MotionSimilar
}

func pair(row []model.SoundingNote, i, j int) [2]model.SoundingNote {
	return [2]model.SoundingNote{row[i], row[j]}
}

// AnalyzeMatrix reports every voice pair i<j on every row of a sounding-note
// matrix indexed [row][voice].
func AnalyzeMatrix(beats []float64, annotations []string, matrix [][]model.SoundingNote) []model.BeatReport {
	var res []model.BeatReport
	for r, row := range matrix {
		report := model.BeatReport{Beat: beats[r]}
		if r < len(annotations) {
			report.Annotation = annotations[r]
		}
		for i := 0; i < len(row); i++ {
			for j := i + 1; j < len(row); j++ {
				cur := pair(row, i, j)
				var prev [2]model.SoundingNote
				if r > 0 {
					prev = pair(matrix[r-1], i, j)
				}
				p := model.PairReport{
					First:  i,
					Second: j,
					Motion: Motion(prev, cur, r == 0),
				}
				if cur[0].Sounding && cur[1].Sounding {
					semitones := util.Abs(int(cur[0].Pitch) - int(cur[1].Pitch))
					interval := Lookup(semitones)
					p.Semitones = semitones
					p.Interval = interval.Name
					p.Score = interval.Score
					p.PhaseAligned = interval.PhaseAligned
				} else {
					p.Semitones = -1
					p.Interval = RestInterval
				}
				report.Pairs = append(report.Pairs, p)
			}
		}
		res = append(res, report)
	}
	return res
}

// Analyze resolves the sounding notes of a parsed grid and reports on them.
func Analyze(g *model.Grid) model.AnalyzeResponse {
	var resp model.AnalyzeResponse
	for _, v := range g.Voices {
		resp.Voices = append(resp.Voices, v.Label)
	}
	resp.Beats = AnalyzeMatrix(g.Beats, g.Annotations, grid.SoundingMatrix(g))
	return resp
}
