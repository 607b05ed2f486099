//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/midgrid/cmd"
	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/decode"
	"github.com/jsphweid/midgrid/encode"
	"github.com/jsphweid/midgrid/grid"
	"github.com/jsphweid/midgrid/midi"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/render"
	"github.com/jsphweid/midgrid/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var grids = map[string]string{
	"chorale": `// Patch S: 73
// Patch A: 71
# tempo 72
0   | G4 | D4 | B3 | G2
1   | A4 | E4 | C4 | A2
2   | B4 | D4 | G3 | G2   // half cadence
3   | C5 | E4 | A3 | A2
`,
	"rests and sustains": `# tempo 96
# tempo 120 2
0   | C4:2 | E3
1   | -    | .
2   | D4@90 | G3:0.5
2.5 | .    | A3
3   | E4~40 | B3
`,
	"directives": `0 | C4 | G3
// Patch V1: 33
1 | D4 | F3
// Patch V0: 5
2 | E4 | E3
`,
}

// onsets lists "beat pitch" for every sounding onset of every voice.
func onsets(g *model.Grid) [][]string {
	res := make([][]string, len(g.Voices))
	for v, voice := range g.Voices {
		for r, cell := range voice.Cells {
			if cell.Kind == model.Pitched {
				res[v] = append(res[v], fmt.Sprintf("%v %d", util.FormatNumber(g.Beats[r], 3), cell.Pitch))
			}
		}
	}
	return res
}

func roundTrip(t *testing.T, text string) (*model.Grid, *model.Grid) {
	logger := zaptest.NewLogger(t)
	cfg := config.Default()

	first, err := grid.ParseString(text, grid.Options{DefaultPatch: cfg.DefaultPatch}, logger)
	require.NoError(t, err)

	s, err := encode.Encode(first, encode.DefaultOptions())
	require.NoError(t, err)
	dat, err := midi.Bytes(s)
	require.NoError(t, err)

	read, err := midi.ReadMidi(bytes.NewReader(dat))
	require.NoError(t, err)
	score, err := decode.Decode(read, logger)
	require.NoError(t, err)

	rendered := render.String(score, render.DefaultOptions())
	second, err := grid.ParseString(rendered, grid.Options{DefaultPatch: cfg.DefaultPatch}, logger)
	require.NoError(t, err, rendered)
	return first, second
}

func TestGridRoundTrip(t *testing.T) {
	for name, text := range grids {
		t.Run(name, func(t *testing.T) {
			first, second := roundTrip(t, text)
			assert.Equal(t, onsets(first), onsets(second))
			if len(first.Tempos) > 0 {
				assert.Equal(t, first.Tempos, second.Tempos)
			}
		})
	}
}

func TestRenderedGridIsStable(t *testing.T) {
	for name, text := range grids {
		t.Run(name, func(t *testing.T) {
			_, second := roundTrip(t, text)
			s, err := encode.Encode(second, encode.DefaultOptions())
			require.NoError(t, err)
			score, err := decode.Decode(s, zaptest.NewLogger(t))
			require.NoError(t, err)

			_, third := roundTrip(t, render.String(score, render.DefaultOptions()))
			assert.Equal(t, onsets(second), onsets(third))
			assert.Equal(t, second.Beats, third.Beats)
		})
	}
}

func TestCompileCommandOutputs(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chorale.midgrid")
	require.NoError(t, os.WriteFile(in, []byte(grids["chorale"]), 0644))

	out := filepath.Join(dir, "chorale.mid")
	require.NoError(t, cmd.Compile(in, out, config.Default(), zaptest.NewLogger(t)))

	score, err := decode.DecodeFile(out, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, score.Voices, 4)
	assert.Len(t, score.Notes, 16)

	report, err := os.ReadFile(filepath.Join(dir, "chorale.counterpoint"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "beat 2 // half cadence")
}
