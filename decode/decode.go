package decode

import (
	"fmt"
	"sort"

	"github.com/jsphweid/midgrid/logging"
	"github.com/jsphweid/midgrid/midi"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

var ErrNoNotes = errors.New("no notes found")

type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type absEvent struct {
	tick  uint64
	track int
	msg   smf.Message
}

type onset struct {
	tick     uint64
	velocity uint8
	patch    uint8
}

type voiceState struct {
	info    model.VoiceInfo
	patch   uint8
	started bool
	// open note-ons per key, oldest first
	open map[uint8][]onset
}

// Decode recovers the notes, tempo map and voice layout from an SMF.
//
// Every track's deltas are summed into absolute ticks first, then all events
// are merged into one sequence ordered by tick with ties kept in track order.
// Only after that are tempo and note pairing interpreted. A note-off closes
// the oldest open note-on of the same key in its voice.
func Decode(s *smf.SMF, logger *zap.Logger) (*model.Score, error) {
	logger = logging.OrNop(logger)

	tpb := midi.TicksPerBeat(s)
	if tpb == 0 {
		return nil, &DecodeError{errors.New("only metric time formats are supported")}
	}

	events := mergeTracks(s.Tracks)

	score := &model.Score{TicksPerBeat: tpb}
	metaTrack := -1
	if len(s.Tracks) > 1 {
		metaTrack = 0
	}

	trackVoices := make(map[int]int)
	var voices []*voiceState
	voiceFor := func(track int, channel uint8) *voiceState {
		if idx, ok := trackVoices[track]; ok {
			return voices[idx]
		}
		v := &voiceState{
			info: model.VoiceInfo{Track: track, Channel: channel},
			open: make(map[uint8][]onset),
		}
		trackVoices[track] = len(voices)
		voices = append(voices, v)
		return v
	}

	seenPrograms := make(map[[2]uint64]bool)

	for _, evt := range events {
		var bpm float64
		if evt.msg.GetMetaTempo(&bpm) {
			beat := float64(evt.tick) / float64(tpb)
			score.Tempos.Add(beat, util.Round(bpm, 2))
			continue
		}

		msg := gomidi.Message(evt.msg)
		var channel, key, velocity, program, controller, value uint8

		switch {
		case msg.GetProgramChange(&channel, &program):
			k := [2]uint64{evt.tick, uint64(channel)}
			if !seenPrograms[k] {
				seenPrograms[k] = true
				score.Events = append(score.Events, model.EventNote{
					Tick:   evt.tick,
					Kind:   "program_change",
					Detail: fmt.Sprintf("channel=%d program=%d", channel, program),
				})
			}
			if evt.track == metaTrack {
				continue
			}
			voiceFor(evt.track, channel).patch = program

		case msg.GetControlChange(&channel, &controller, &value):
			score.Events = append(score.Events, model.EventNote{
				Tick:   evt.tick,
				Kind:   "control_change",
				Detail: fmt.Sprintf("channel=%d control=%d value=%d", channel, controller, value),
			})

		case msg.GetNoteStart(&channel, &key, &velocity):
			if evt.track == metaTrack {
				logger.Warn("ignoring note on metadata track", zap.Uint64("tick", evt.tick))
				continue
			}
			v := voiceFor(evt.track, channel)
			if !v.started {
				v.started = true
				v.info.Patch = v.patch
			}
			v.open[key] = append(v.open[key], onset{tick: evt.tick, velocity: velocity, patch: v.patch})

		case msg.GetNoteEnd(&channel, &key):
			if evt.track == metaTrack {
				continue
			}
			idx, ok := trackVoices[evt.track]
			if !ok || len(voices[idx].open[key]) == 0 {
				logger.Warn("note off without note on", zap.Uint64("tick", evt.tick), zap.Uint8("key", key))
				continue
			}
			v := voices[idx]
			on := v.open[key][0]
			v.open[key] = v.open[key][1:]
			if evt.tick == on.tick {
				logger.Debug("dropping zero length note", zap.Uint64("tick", evt.tick), zap.Uint8("key", key))
				continue
			}
			score.Notes = append(score.Notes, model.NoteEvent{
				StartTick: on.tick,
				StopTick:  evt.tick,
				Pitch:     key,
				Velocity:  on.velocity,
				Voice:     idx,
				Patch:     on.patch,
			})
		}
	}

	for i, v := range voices {
		for key, open := range v.open {
			if len(open) > 0 {
				logger.Warn("note never released", zap.Int("voice", i), zap.Uint8("key", key), zap.Int("count", len(open)))
			}
		}
		if !v.started {
			v.info.Patch = v.patch
		}
		score.Voices = append(score.Voices, v.info)
	}

	if len(score.Notes) == 0 {
		return nil, &DecodeError{ErrNoNotes}
	}

	sort.SliceStable(score.Notes, func(i, j int) bool {
		a, b := score.Notes[i], score.Notes[j]
		if a.StartTick != b.StartTick {
			return a.StartTick < b.StartTick
		}
		return a.Voice < b.Voice
	})

	logger.Debug("decoded",
		zap.Int("notes", len(score.Notes)),
		zap.Int("voices", len(score.Voices)),
		zap.Int("tempos", len(score.Tempos)))
	return score, nil
}

func DecodeFile(path string, logger *zap.Logger) (*model.Score, error) {
	s, err := midi.ReadMidiFile(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return Decode(s, logger)
}

// mergeTracks flattens all tracks into absolute ticks. The stable sort keeps
// same-tick events in track order and, within a track, in file order.
func mergeTracks(tracks []smf.Track) []absEvent {
	var events []absEvent
	for i, track := range tracks {
		var absTicks uint64
		for _, event := range track {
			absTicks += uint64(event.Delta)
			events = append(events, absEvent{tick: absTicks, track: i, msg: event.Message})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})
	return events
}
