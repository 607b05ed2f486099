package model

// NoteEvent is one completed note recovered from an event stream,
// spanning [StartTick, StopTick).
type NoteEvent struct {
	StartTick uint64
	StopTick  uint64
	Pitch     uint8
	Velocity  uint8
	Voice     int
	Patch     uint8
}

func (n NoteEvent) StartBeat(ticksPerBeat uint16) float64 {
	return float64(n.StartTick) / float64(ticksPerBeat)
}

func (n NoteEvent) StopBeat(ticksPerBeat uint16) float64 {
	return float64(n.StopTick) / float64(ticksPerBeat)
}

func (n NoteEvent) DurationBeats(ticksPerBeat uint16) float64 {
	return float64(n.StopTick-n.StartTick) / float64(ticksPerBeat)
}

type VoiceInfo struct {
	Track   int
	Channel uint8
	// program in effect at the voice's first note
	Patch uint8
}

// EventNote records a non-note channel event for the trailer of a rendered grid.
type EventNote struct {
	Tick   uint64
	Kind   string
	Detail string
}

type Score struct {
	TicksPerBeat uint16
	Notes        []NoteEvent
	Tempos       TempoMap
	Voices       []VoiceInfo
	Events       []EventNote
}
