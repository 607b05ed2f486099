package constants

import "os"

func GetConfigPath() string {
	return os.Getenv("MIDGRID_CONFIG")
}

func GetListenAddr() string {
	addr := os.Getenv("MIDGRID_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

const TicksPerBeat = 480

// 96 bpm is what hand-written grids have always been played back at
const DefaultTempo = 96.0

// 500000 microseconds per beat, assumed by readers when a file declares nothing
const ImplicitTempo = 120.0

const DefaultPatch = 19

const DefaultVelocity = 64

const ReportExtension = ".counterpoint"

const (
	SustainMarker = "-"
	RestMarker    = "."
	CommentMarker = "//"
	PatchMarker   = "// Patch"
	TempoKeyword  = "tempo"
)

// all of these mean the voice is silent from this row on
var RestMarkers = []string{".", "_", "r"}

// beats are rounded to this many decimals before they are compared
const BeatPrecision = 6

// explicit durations may overrun the next onset by this much
const DurationTolerance = 0.01
