package analysis

import (
	"fmt"

	"github.com/jsphweid/midgrid/util"
)

type Interval struct {
	Semitones int
	Name      string
	// lower term first, e.g. 2:3 for a fifth
	Ratio        [2]int
	Score        float64
	PhaseAligned bool
}

type simpleInterval struct {
	name  string
	ratio [2]int
}

var simpleIntervals = [13]simpleInterval{
	{"Unison", [2]int{1, 1}},
	{"Minor 2nd", [2]int{15, 16}},
	{"Major 2nd", [2]int{8, 9}},
	{"Minor 3rd", [2]int{5, 6}},
	{"Major 3rd", [2]int{4, 5}},
	{"Perfect 4th", [2]int{3, 4}},
	{"Tritone", [2]int{32, 45}},
	{"Perfect 5th", [2]int{2, 3}},
	{"Minor 6th", [2]int{5, 8}},
	{"Major 6th", [2]int{3, 5}},
	{"Minor 7th", [2]int{5, 9}},
	{"Major 7th", [2]int{8, 15}},
	{"Octave", [2]int{1, 2}},
}

// Unknown stands in for anything outside the table and is as complex as
// anything can be.
var Unknown = Interval{Semitones: -1, Name: "Unknown", Score: 999}

// HarmonicTable maps every MIDI interval 0-127 to its ratio and score. It is
// built once and only read afterwards.
var HarmonicTable = buildHarmonicTable()

func buildHarmonicTable() [128]Interval {
	var table [128]Interval
	for s := range table {
		table[s] = compound(s)
	}
	return table
}

// compound keeps intervals up to an octave as they are. Wider ones reuse the
// class s mod 12 with the ratio scaled by 2^octaves, and their score is
// discounted by (1+octaves)^2.
func compound(semitones int) Interval {
	octaves, class := 0, semitones
	if semitones > 12 {
		octaves, class = semitones/12, semitones%12
	}
	base := simpleIntervals[class]
	scale := 1 << octaves
	ratio := [2]int{base.ratio[0] * scale, base.ratio[1] * scale}

	name := base.name
	if octaves > 0 {
		name = fmt.Sprintf("%v +%d oct", base.name, octaves)
	}
	spread := float64((1 + octaves) * (1 + octaves))
	return Interval{
		Semitones:    semitones,
		Name:         name,
		Ratio:        ratio,
		Score:        float64(ratio[0]+ratio[1]) / spread,
		PhaseAligned: util.IsPowerOfTwo(util.Max(ratio[0], ratio[1])),
	}
}

func Lookup(semitones int) Interval {
	if semitones < 0 || semitones >= len(HarmonicTable) {
		return Unknown
	}
	return HarmonicTable[semitones]
}
