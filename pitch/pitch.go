package pitch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var names = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var classes = map[string]int{
	"C": 0, "C#": 1, "D": 2, "D#": 3, "E": 4, "F": 5,
	"F#": 6, "G": 7, "G#": 8, "A": 9, "A#": 10, "B": 11,
	"B-": 10, "A-": 8, "E-": 3,
}

// lowestOctave spells octave -1. A plain "-1" would read as a flat in
// octave 1 (B-1 is B flat 1).
const lowestOctave = "_1"

// Name renders a MIDI key as letter, optional sharp and octave, with 60 = C4
// and keys 0-11 in octave _1.
func Name(key uint8) string {
	octave := int(key)/12 - 1
	if octave < 0 {
		return names[key%12] + lowestOctave
	}
	return fmt.Sprintf("%v%d", names[key%12], octave)
}

// Parse reads a pitch token such as C4, F#3, B-2 or C#_1.
func Parse(token string) (uint8, error) {
	if strings.HasSuffix(token, lowestOctave) {
		class, ok := classes[strings.TrimSuffix(token, lowestOctave)]
		if !ok {
			return 0, errors.Errorf("invalid pitch name %q", token)
		}
		return uint8(class), nil
	}
	if len(token) < 2 {
		return 0, errors.Errorf("invalid pitch %q", token)
	}
	class, ok := classes[token[:len(token)-1]]
	if !ok {
		return 0, errors.Errorf("invalid pitch name %q", token)
	}
	octave, err := strconv.Atoi(token[len(token)-1:])
	if err != nil {
		return 0, errors.Errorf("invalid octave in pitch %q", token)
	}
	key := 12*(octave+1) + class
	if key > 127 {
		return 0, errors.Errorf("pitch %q out of range", token)
	}
	return uint8(key), nil
}
