package cmd

import (
	"io"

	"github.com/jsphweid/midgrid/analysis"
	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/decode"
	"github.com/jsphweid/midgrid/encode"
	"github.com/jsphweid/midgrid/grid"
	"github.com/jsphweid/midgrid/midi"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/render"
	"github.com/jsphweid/midgrid/sample"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

func renderOptions(cfg config.Config) render.Options {
	return render.Options{DefaultVelocity: cfg.DefaultVelocity}
}

func gridOptions(cfg config.Config) grid.Options {
	return grid.Options{DefaultPatch: cfg.DefaultPatch}
}

func encodeOptions(cfg config.Config) encode.Options {
	return encode.Options{
		TicksPerBeat:    cfg.TicksPerBeat,
		DefaultTempo:    cfg.DefaultTempo,
		DefaultVelocity: cfg.DefaultVelocity,
	}
}

// window selects the beats to render; a zero value renders everything.
type window struct {
	from, to float64
}

func (w window) empty() bool {
	return w.from <= 0 && w.to <= 0
}

// midiToGrid reads an SMF stream and writes its midgrid rendering to out.
func midiToGrid(in io.Reader, out io.Writer, win window, cfg config.Config, logger *zap.Logger) error {
	s, err := midi.ReadMidi(in)
	if err != nil {
		return &decode.DecodeError{Err: err}
	}
	score, err := decode.Decode(s, logger)
	if err != nil {
		return err
	}
	logger.Info("decoded", zap.Int("notes", len(score.Notes)), zap.Int("voices", len(score.Voices)))
	if !win.empty() {
		if score, err = sample.Window(score, win.from, win.to); err != nil {
			return err
		}
		logger.Info("windowed", zap.Float64("from", win.from), zap.Float64("to", win.to), zap.Int("notes", len(score.Notes)))
	}
	return render.Render(out, score, renderOptions(cfg))
}

type compiled struct {
	song   *smf.SMF
	report model.AnalyzeResponse
}

// compileGrid parses, encodes and analyzes without touching the filesystem.
func compileGrid(in io.Reader, cfg config.Config, logger *zap.Logger) (*compiled, error) {
	g, err := grid.Parse(in, gridOptions(cfg), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed grid",
		zap.Int("rows", g.NumRows()),
		zap.Int("voices", len(g.Voices)),
		zap.Int("tempos", len(g.Tempos)),
		zap.Int("directives", len(g.Directives)))

	s, err := encode.Encode(g, encodeOptions(cfg))
	if err != nil {
		return nil, err
	}
	return &compiled{song: s, report: analysis.Analyze(g)}, nil
}

func analyzeGrid(in io.Reader, cfg config.Config, logger *zap.Logger) (model.AnalyzeResponse, error) {
	g, err := grid.Parse(in, gridOptions(cfg), logger)
	if err != nil {
		return model.AnalyzeResponse{}, err
	}
	return analysis.Analyze(g), nil
}
