package model

import (
	"math"
	"sort"
)

type TempoChange struct {
	Beat float64
	BPM  float64
}

// TempoMap stays sorted by beat and never holds two changes with the same
// rounded (bpm, beat) pair.
type TempoMap []TempoChange

func tempoKey(beat, bpm float64) [2]int64 {
	return [2]int64{int64(math.Round(bpm * 100)), int64(math.Round(beat * 1000))}
}

// Add inserts a change after any existing changes at the same beat and
// reports whether it was new.
func (m *TempoMap) Add(beat, bpm float64) bool {
	key := tempoKey(beat, bpm)
	for _, c := range *m {
		if tempoKey(c.Beat, c.BPM) == key {
			return false
		}
	}
	i := sort.Search(len(*m), func(i int) bool {
		return (*m)[i].Beat > beat
	})
	*m = append(*m, TempoChange{})
	copy((*m)[i+1:], (*m)[i:])
	(*m)[i] = TempoChange{Beat: beat, BPM: bpm}
	return true
}

// At returns the tempo in effect at beat, or fallback before the first change.
func (m TempoMap) At(beat, fallback float64) float64 {
	bpm := fallback
	for _, c := range m {
		if c.Beat > beat {
			break
		}
		bpm = c.BPM
	}
	return bpm
}
