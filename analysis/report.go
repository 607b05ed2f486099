package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
)

func formatPair(voices []string, p model.PairReport) string {
	name := p.Interval
	if p.PhaseAligned {
		name += " [phase-aligned]"
	}
	score := "-"
	if p.Semitones >= 0 {
		score = fmt.Sprintf("%.2f", p.Score)
	}
	return fmt.Sprintf("  %v-%v: %v, motion %v, score %v", voices[p.First], voices[p.Second], name, p.Motion, score)
}

// WriteReport prints one block per beat row.
func WriteReport(w io.Writer, resp model.AnalyzeResponse) error {
	var b strings.Builder
	for i, beat := range resp.Beats {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "beat %v", util.FormatNumber(beat.Beat, 3))
		if beat.Annotation != "" {
			b.WriteString(" // " + beat.Annotation)
		}
		b.WriteString("\n")
		for _, p := range beat.Pairs {
			b.WriteString(formatPair(resp.Voices, p) + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func ReportString(resp model.AnalyzeResponse) string {
	var b strings.Builder
	WriteReport(&b, resp)
	return b.String()
}
