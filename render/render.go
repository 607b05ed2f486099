package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/pitch"
	"github.com/jsphweid/midgrid/util"
)

var satbPrograms = []uint8{73, 71, 48, 19}

var satbLabels = []string{"S", "A", "T", "B"}

type Options struct {
	DefaultVelocity uint8
}

func DefaultOptions() Options {
	return Options{DefaultVelocity: constants.DefaultVelocity}
}

// Timeline is the sorted union of every note's start and stop beat.
func Timeline(score *model.Score) []float64 {
	seen := make(map[float64]bool)
	for _, n := range score.Notes {
		seen[util.Round(n.StartBeat(score.TicksPerBeat), constants.BeatPrecision)] = true
		seen[util.Round(n.StopBeat(score.TicksPerBeat), constants.BeatPrecision)] = true
	}
	return util.GetSortedKeys(seen)
}

// Labels uses SATB names only when every voice sits in its SATB slot,
// so that the labels parse back to the same indices.
func Labels(voices []model.VoiceInfo) []string {
	labels := make([]string, len(voices))
	satb := len(voices) > 0 && len(voices) <= len(satbLabels)
	for i, v := range voices {
		if satb && v.Patch != satbPrograms[i] {
			satb = false
		}
		labels[i] = fmt.Sprintf("V%d", i)
	}
	if satb {
		copy(labels, satbLabels)
	}
	return labels
}

// beatPlaces is how many decimals beats are printed with: enough that two
// different ticks never print as the same beat, and never fewer than 3.
func beatPlaces(tpb uint16) int {
	return util.Max(3, len(strconv.Itoa(int(tpb))))
}

func token(n model.NoteEvent, tpb uint16, patchChange bool, opts Options) string {
	var b strings.Builder
	b.WriteString(pitch.Name(n.Pitch))
	places := beatPlaces(tpb)
	dur := util.Round(n.DurationBeats(tpb), places)
	if dur != 1 {
		b.WriteString(":" + util.FormatNumber(dur, places))
	}
	if n.Velocity != opts.DefaultVelocity {
		fmt.Fprintf(&b, "@%d", n.Velocity)
	}
	if patchChange {
		fmt.Fprintf(&b, "~%d", n.Patch)
	}
	return b.String()
}

// Cells lays the notes out on the timeline, one column per voice.
func Cells(score *model.Score, timeline []float64, opts Options) [][]string {
	index := make(map[float64]int, len(timeline))
	for i, b := range timeline {
		index[b] = i
	}

	cells := make([][]string, len(score.Voices))
	patches := make([]uint8, len(score.Voices))
	for v := range cells {
		cells[v] = make([]string, len(timeline))
		for i := range cells[v] {
			cells[v][i] = constants.RestMarker
		}
		patches[v] = score.Voices[v].Patch
	}

	for _, n := range score.Notes {
		start := util.Round(n.StartBeat(score.TicksPerBeat), constants.BeatPrecision)
		end := util.Round(n.StopBeat(score.TicksPerBeat), constants.BeatPrecision)

		patchChange := n.Patch != patches[n.Voice]
		patches[n.Voice] = n.Patch

		col := cells[n.Voice]
		col[index[start]] = token(n, score.TicksPerBeat, patchChange, opts)
		for i := index[start] + 1; i < len(timeline) && timeline[i] < end; i++ {
			if col[i] == constants.RestMarker {
				col[i] = constants.SustainMarker
			}
		}
	}
	return cells
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", util.Max(0, width-len(s)))
}

func tempoLine(t model.TempoChange, places int) string {
	if t.Beat > 0 {
		return fmt.Sprintf("# %v %.2f %.*f", constants.TempoKeyword, t.BPM, places, t.Beat)
	}
	return fmt.Sprintf("# %v %.2f", constants.TempoKeyword, t.BPM)
}

// Render writes the midgrid text for score. Rows where every voice rests are
// left out.
func Render(w io.Writer, score *model.Score, opts Options) error {
	var b strings.Builder
	places := beatPlaces(score.TicksPerBeat)
	b.WriteString("# midgrid\n")

	tempos := score.Tempos
	if len(tempos) == 0 || tempos[0].Beat > 0 {
		tempos = append(model.TempoMap{{Beat: 0, BPM: constants.ImplicitTempo}}, tempos...)
	}
	seenAtStart := make(map[float64]bool)
	for _, t := range tempos {
		if t.Beat == 0 {
			if seenAtStart[t.BPM] {
				continue
			}
			seenAtStart[t.BPM] = true
		}
		b.WriteString(tempoLine(t, places) + "\n")
	}

	labels := Labels(score.Voices)
	for i, v := range score.Voices {
		fmt.Fprintf(&b, "%v %v: %d\n", constants.PatchMarker, labels[i], v.Patch)
	}

	timeline := Timeline(score)
	cells := Cells(score, timeline, opts)

	beatStrings := make([]string, len(timeline))
	beatWidth := len("#beat")
	for i, beat := range timeline {
		beatStrings[i] = util.FormatNumber(beat, places)
		beatWidth = util.Max(beatWidth, len(beatStrings[i]))
	}
	widths := make([]int, len(labels))
	for v, label := range labels {
		widths[v] = len(label)
		for _, c := range cells[v] {
			widths[v] = util.Max(widths[v], len(c))
		}
	}

	row := func(first string, rest func(v int) string) {
		cols := []string{pad(first, beatWidth)}
		for v := range labels {
			cols = append(cols, pad(rest(v), widths[v]))
		}
		b.WriteString(strings.TrimRight(strings.Join(cols, " | "), " ") + "\n")
	}

	row("#beat", func(v int) string { return labels[v] })
	for i := range timeline {
		silent := true
		for v := range cells {
			if cells[v][i] != constants.RestMarker {
				silent = false
				break
			}
		}
		if silent {
			continue
		}
		row(beatStrings[i], func(v int) string { return cells[v][i] })
	}

	if len(score.Events) > 0 {
		b.WriteString("\n# events\n")
		for _, e := range score.Events {
			beat := float64(e.Tick) / float64(score.TicksPerBeat)
			fmt.Fprintf(&b, "# [%.*f] %v %v\n", places, beat, e.Kind, e.Detail)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func String(score *model.Score, opts Options) string {
	var b strings.Builder
	Render(&b, score, opts)
	return b.String()
}
