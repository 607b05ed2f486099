package sample

import (
	"math"

	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
	"github.com/pkg/errors"
)

var ErrEmptyWindow = errors.New("no notes start inside the window")

func toTick(beat float64, ticksPerBeat uint16) uint64 {
	return uint64(math.Round(util.Max(beat, 0) * float64(ticksPerBeat)))
}

// Window keeps the notes of score that start in [from, to) beats, cutting
// any that run past to. A to of zero or less leaves the end open. Beats are
// not shifted, and every voice keeps its column even if it ends up silent.
func Window(score *model.Score, from, to float64) (*model.Score, error) {
	start := toTick(from, score.TicksPerBeat)
	end := uint64(math.MaxUint64)
	if to > 0 {
		end = toTick(to, score.TicksPerBeat)
	}

	res := &model.Score{
		TicksPerBeat: score.TicksPerBeat,
		Voices:       score.Voices,
	}
	for _, n := range score.Notes {
		if n.StartTick < start || n.StartTick >= end {
			continue
		}
		n.StopTick = util.Min(n.StopTick, end)
		res.Notes = append(res.Notes, n)
	}

	if len(res.Notes) == 0 {
		return nil, ErrEmptyWindow
	}

	// the tempo in effect at the cut becomes the opening tempo
	if len(score.Tempos) > 0 {
		fromBeat := float64(start) / float64(score.TicksPerBeat)
		res.Tempos.Add(fromBeat, score.Tempos.At(fromBeat, constants.ImplicitTempo))
	}
	for _, t := range score.Tempos {
		tick := toTick(t.Beat, score.TicksPerBeat)
		if tick > start && tick < end {
			res.Tempos.Add(t.Beat, t.BPM)
		}
	}

	for _, e := range score.Events {
		if e.Tick >= start && e.Tick < end {
			res.Events = append(res.Events, e)
		}
	}
	return res, nil
}
