package midi

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ReadMidi parses an SMF stream. gomidi panics on some malformed input
// (https://github.com/gomidi/midi/issues/20), which is turned into an error.
func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	defer func() {
		if p := recover(); p != nil {
			s = nil
			e = errors.Errorf("parsing midi: %v", p)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing midi")
	}
	return res, nil
}

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "reading midi file")
	}
	return ReadMidi(bytes.NewReader(dat))
}

func Bytes(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "writing midi")
	}
	return buf.Bytes(), nil
}

func WriteMidiFile(filepath string, s *smf.SMF) error {
	dat, err := Bytes(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath, dat, 0644); err != nil {
		return errors.Wrapf(err, "writing %v", filepath)
	}
	return nil
}

// TicksPerBeat returns the metric resolution, or 0 for SMPTE time formats.
func TicksPerBeat(s *smf.SMF) uint16 {
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		return mt.Resolution()
	}
	return 0
}
