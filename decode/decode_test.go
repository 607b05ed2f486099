package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/midgrid/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func newSMF(tracks ...smf.Track) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, tr := range tracks {
		tr.Close(0)
		s.Add(tr)
	}
	return s
}

func metaTrack(tempos ...[2]float64) smf.Track {
	var tr smf.Track
	var last uint32
	for _, t := range tempos {
		tick := uint32(t[0] * 480)
		tr.Add(tick-last, smf.MetaTempo(t[1]))
		last = tick
	}
	return tr
}

func TestOverlappingSamePitchPairsFirstInFirstOut(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 80))
	tr.Add(240, gomidi.NoteOn(0, 60, 90))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Add(240, gomidi.NoteOff(0, 60))

	score, err := Decode(newSMF(metaTrack(), tr), nil)
	require.NoError(t, err)

	assert.Equal(t, []model.NoteEvent{
		{StartTick: 0, StopTick: 720, Pitch: 60, Velocity: 80, Voice: 0},
		{StartTick: 240, StopTick: 960, Pitch: 60, Velocity: 90, Voice: 0},
	}, score.Notes)
}

func TestNoteOnWithZeroVelocityReleases(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 64, 100))
	tr.Add(480, gomidi.NoteOn(0, 64, 0))

	score, err := Decode(newSMF(metaTrack(), tr), nil)
	require.NoError(t, err)
	require.Len(t, score.Notes, 1)
	assert.Equal(t, uint64(480), score.Notes[0].StopTick)
	assert.Equal(t, 1.0, score.Notes[0].DurationBeats(score.TicksPerBeat))
}

func TestVoicesFollowFirstEncounteredTrack(t *testing.T) {
	var late, early smf.Track
	late.Add(480, gomidi.NoteOn(0, 72, 64))
	late.Add(480, gomidi.NoteOff(0, 72))
	early.Add(0, gomidi.NoteOn(1, 48, 64))
	early.Add(960, gomidi.NoteOff(1, 48))

	score, err := Decode(newSMF(metaTrack(), late, early), nil)
	require.NoError(t, err)

	assert := assert.New(t)
	require.Len(t, score.Voices, 2)
	assert.Equal(2, score.Voices[0].Track)
	assert.Equal(uint8(1), score.Voices[0].Channel)
	assert.Equal(1, score.Voices[1].Track)
	assert.Equal(uint8(48), score.Notes[0].Pitch)
	assert.Equal(0, score.Notes[0].Voice)
	assert.Equal(1, score.Notes[1].Voice)
}

func TestTemposAreBeatsNotTime(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 64))
	tr.Add(1920, gomidi.NoteOff(0, 60))

	score, err := Decode(newSMF(metaTrack([2]float64{0, 96}, [2]float64{2, 120}, [2]float64{2, 120}), tr), nil)
	require.NoError(t, err)

	assert.Equal(t, model.TempoMap{{Beat: 0, BPM: 96}, {Beat: 2, BPM: 120}}, score.Tempos)
	assert.Equal(t, 4.0, score.Notes[0].StopBeat(score.TicksPerBeat))
}

func TestProgramChangesFollowNotes(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.ProgramChange(0, 73))
	tr.Add(0, gomidi.NoteOn(0, 60, 64))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.ProgramChange(0, 48))
	tr.Add(0, gomidi.NoteOn(0, 62, 64))
	tr.Add(480, gomidi.NoteOff(0, 62))

	score, err := Decode(newSMF(metaTrack(), tr), nil)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(uint8(73), score.Voices[0].Patch)
	assert.Equal(uint8(73), score.Notes[0].Patch)
	assert.Equal(uint8(48), score.Notes[1].Patch)
	require.Len(t, score.Events, 2)
	assert.Equal("program_change", score.Events[1].Kind)
	assert.Equal("channel=0 program=48", score.Events[1].Detail)
}

func TestSingleTrackFileIsAVoice(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(100))
	tr.Add(0, gomidi.NoteOn(0, 60, 64))
	tr.Add(480, gomidi.NoteOff(0, 60))

	score, err := Decode(newSMF(tr), nil)
	require.NoError(t, err)
	assert.Len(t, score.Notes, 1)
	assert.Equal(t, model.TempoMap{{Beat: 0, BPM: 100}}, score.Tempos)
}

func TestNoNotesIsDecodeError(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOff(0, 60))

	_, err := Decode(newSMF(metaTrack([2]float64{0, 96}), tr), nil)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.ErrorIs(t, err, ErrNoNotes)
}

func TestUnreadableFileIsDecodeError(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.mid"), nil)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
