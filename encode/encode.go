package encode

import (
	"math"

	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/grid"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type Options struct {
	TicksPerBeat    uint16
	DefaultTempo    float64
	DefaultVelocity uint8
}

func DefaultOptions() Options {
	return Options{
		TicksPerBeat:    constants.TicksPerBeat,
		DefaultTempo:    constants.DefaultTempo,
		DefaultVelocity: constants.DefaultVelocity,
	}
}

func (o Options) ticks(beat float64) uint64 {
	return uint64(math.Round(beat * float64(o.TicksPerBeat)))
}

// trackWriter turns absolute ticks into deltas. Moving the cursor without
// writing anything is how empty grid time gets into the stream: the gap rides
// on the next event's delta.
type trackWriter struct {
	track  smf.Track
	cursor uint64
	last   uint64
}

func (w *trackWriter) seek(tick uint64) {
	w.cursor = tick
}

func (w *trackWriter) add(msg []byte) {
	w.track.Add(uint32(w.cursor-w.last), msg)
	w.last = w.cursor
}

func (w *trackWriter) close() smf.Track {
	w.track.Close(uint32(w.cursor - w.last))
	return w.track
}

// Encode builds a multi-track SMF: track 0 carries tempo, then one track per
// voice on channel voice mod 16.
func Encode(g *model.Grid, opts Options) (*smf.SMF, error) {
	if opts.TicksPerBeat == 0 {
		return nil, errors.New("ticks per beat must be > 0")
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.TicksPerBeat)

	if err := s.Add(tempoTrack(g.Tempos, opts)); err != nil {
		return nil, errors.Wrap(err, "adding tempo track")
	}
	for v := range g.Voices {
		if err := s.Add(voiceTrack(g, v, opts)); err != nil {
			return nil, errors.Wrapf(err, "adding track for voice %v", g.Voices[v].Label)
		}
	}
	return s, nil
}

func tempoTrack(tempos model.TempoMap, opts Options) smf.Track {
	var w trackWriter
	lastBPM := math.NaN()
	if len(tempos) == 0 || tempos[0].Beat > 0 {
		w.add(smf.MetaTempo(opts.DefaultTempo))
		lastBPM = opts.DefaultTempo
	}
	for _, t := range tempos {
		if t.BPM == lastBPM {
			continue
		}
		w.seek(opts.ticks(t.Beat))
		w.add(smf.MetaTempo(t.BPM))
		lastBPM = t.BPM
	}
	return w.close()
}

func voiceTrack(g *model.Grid, v int, opts Options) smf.Track {
	voice := g.Voices[v]
	cells := voice.Cells
	channel := uint8(v % 16)

	var w trackWriter
	w.add(smf.MetaTrackSequenceName(voice.Label))
	active := voice.Patch
	w.add(gomidi.ProgramChange(channel, active))

	var current uint8
	sounding := false
	var end float64

	noteOff := func() {
		if sounding {
			w.add(gomidi.NoteOff(channel, current))
			sounding = false
		}
	}

	for r, beat := range g.Beats {
		w.seek(opts.ticks(beat))

		for _, d := range g.DirectivesAt(r, v) {
			if d.Program != active {
				active = d.Program
				w.add(gomidi.ProgramChange(channel, active))
			}
		}
		if cells[r].HasPatch && cells[r].Patch != active {
			active = cells[r].Patch
			w.add(gomidi.ProgramChange(channel, active))
		}

		onset, ok := grid.SoundingOnset(g, r, v)
		var key uint8
		if ok {
			key = cells[onset].Pitch
		}
		if cells[r].Kind == model.Rest || !ok || !sounding || key != current {
			noteOff()
			if ok {
				current, sounding = key, true
				w.add(gomidi.NoteOn(channel, key, cells[onset].VelocityOr(opts.DefaultVelocity)))
			}
		}
		if ok {
			end = grid.NoteEnd(g, onset, v)
		}

		// a note shorter than the row stops inside it
		if sounding && r+1 < len(g.Beats) && end < util.Round(g.Beats[r+1], constants.BeatPrecision) {
			w.seek(opts.ticks(end))
			noteOff()
		}
	}
	if sounding {
		w.seek(opts.ticks(end))
		noteOff()
	}
	// the last onset, a rest included, still owns its span
	for r := len(cells) - 1; r >= 0; r-- {
		if cells[r].IsOnset() {
			w.seek(util.Max(w.cursor, opts.ticks(grid.NoteEnd(g, r, v))))
			break
		}
	}
	return w.close()
}
