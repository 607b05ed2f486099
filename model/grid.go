package model

type CellKind int

const (
	// no onset; whatever was sounding keeps sounding
	Sustain CellKind = iota
	Rest
	Pitched
)

// NoteCell is one voice's field in one data row. Each optional decorator
// carries its own presence flag.
type NoteCell struct {
	Kind  CellKind
	Token string
	Pitch uint8

	Duration         float64
	ExplicitDuration bool

	Velocity    uint8
	HasVelocity bool

	Patch    uint8
	HasPatch bool
}

func (c NoteCell) IsOnset() bool {
	return c.Kind != Sustain
}

func (c NoteCell) VelocityOr(fallback uint8) uint8 {
	if c.HasVelocity {
		return c.Velocity
	}
	return fallback
}

type Voice struct {
	Index int
	Label string
	Patch uint8
	Cells []NoteCell
}

// PatchDirective binds a program change to a data row by its position among
// data rows, not by source line.
type PatchDirective struct {
	Row     int
	Voice   int
	Program uint8
}

type Grid struct {
	Beats       []float64
	Voices      []Voice
	Tempos      TempoMap
	Directives  []PatchDirective
	Annotations []string
	// 1-based source line of every data row
	Lines []int
}

func (g *Grid) NumRows() int {
	return len(g.Beats)
}

// DirectivesAt returns the directives bound to (row, voice) in source order.
func (g *Grid) DirectivesAt(row, voice int) []PatchDirective {
	var res []PatchDirective
	for _, d := range g.Directives {
		if d.Row == row && d.Voice == voice {
			res = append(res, d)
		}
	}
	return res
}

type SoundingNote struct {
	Pitch    uint8
	Sounding bool
}
