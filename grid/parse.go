package grid

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/logging"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/util"
	"go.uber.org/zap"
)

var patchLine = regexp.MustCompile(`^//\s*Patch\b`)

var patchDirective = regexp.MustCompile(`^//\s*Patch\s+(\S+?)\s*:\s*(\d+)\s*$`)

var numericLabel = regexp.MustCompile(`^V?(\d+)$`)

var satbAliases = map[string]int{"S": 0, "A": 1, "T": 2, "B": 3}

type Options struct {
	DefaultPatch uint8
}

func DefaultOptions() Options {
	return Options{DefaultPatch: constants.DefaultPatch}
}

type dataRow struct {
	line       int
	beat       float64
	beatOK     bool
	fields     []string
	annotation string
}

// parseContext carries everything collected while reading one file.
type parseContext struct {
	opts       Options
	logger     *zap.Logger
	defaults   map[int]uint8
	labels     map[int]string
	directives []model.PatchDirective
	// source line of each directive
	directiveLines []int
	tempos         model.TempoMap
	rows           []dataRow
}

func newParseContext(opts Options, logger *zap.Logger) *parseContext {
	return &parseContext{
		opts:     opts,
		logger:   logging.OrNop(logger),
		defaults: make(map[int]uint8),
		labels:   make(map[int]string),
	}
}

// Parse reads a midgrid document. Durations are inferred before it returns,
// so the result can go straight to the encoder or the sounding-note resolver.
func Parse(r io.Reader, opts Options, logger *zap.Logger) (*model.Grid, error) {
	ctx := newParseContext(opts, logger)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineIndex := 0
	for scanner.Scan() {
		if err := ctx.readLine(lineIndex, scanner.Text()); err != nil {
			return nil, err
		}
		lineIndex++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ctx.build()
}

func ParseString(text string, opts Options, logger *zap.Logger) (*model.Grid, error) {
	return Parse(strings.NewReader(text), opts, logger)
}

func (ctx *parseContext) readLine(index int, raw string) error {
	line := index + 1
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		return nil
	case patchLine.MatchString(trimmed):
		voice, program, err := ctx.readPatch(line, trimmed)
		if err != nil {
			return err
		}
		if index == 0 {
			ctx.defaults[voice] = program
		} else {
			ctx.directives = append(ctx.directives, model.PatchDirective{
				Row:     len(ctx.rows),
				Voice:   voice,
				Program: program,
			})
			ctx.directiveLines = append(ctx.directiveLines, line)
		}
		return nil
	case strings.HasPrefix(trimmed, "#"):
		return ctx.readHash(line, trimmed)
	case strings.HasPrefix(trimmed, constants.CommentMarker):
		return nil
	}

	row := dataRow{line: line}
	core := trimmed
	if i := strings.Index(core, constants.CommentMarker); i >= 0 {
		row.annotation = strings.TrimSpace(core[i+len(constants.CommentMarker):])
		core = core[:i]
	}
	parts := strings.Split(core, "|")
	beat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	row.beat, row.beatOK = beat, err == nil
	for _, p := range parts[1:] {
		row.fields = append(row.fields, strings.TrimSpace(p))
	}
	ctx.rows = append(ctx.rows, row)
	return nil
}

func (ctx *parseContext) readPatch(line int, text string) (int, uint8, error) {
	m := patchDirective.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, parseErrorf(line, "malformed patch directive %q", text)
	}
	voice, err := voiceIndex(m[1])
	if err != nil {
		return 0, 0, &ParseError{Line: line, Msg: err.Error()}
	}
	program, err := strconv.Atoi(m[2])
	if err != nil || program > 127 {
		return 0, 0, parseErrorf(line, "patch program %v out of range", m[2])
	}
	if _, ok := satbAliases[m[1]]; ok {
		ctx.labels[voice] = m[1]
	}
	return voice, uint8(program), nil
}

// voiceIndex accepts V<n>, a bare number, or one of the SATB letters.
func voiceIndex(label string) (int, error) {
	if m := numericLabel.FindStringSubmatch(label); m != nil {
		return strconv.Atoi(m[1])
	}
	if idx, ok := satbAliases[label]; ok {
		return idx, nil
	}
	return 0, fmt.Errorf("unknown voice label %q", label)
}

// readHash handles "# tempo <bpm> [beat]"; any other # line is a comment.
func (ctx *parseContext) readHash(line int, text string) error {
	fields := strings.Fields(strings.TrimPrefix(text, "#"))
	if len(fields) == 0 || fields[0] != constants.TempoKeyword {
		return nil
	}
	if len(fields) < 2 || len(fields) > 3 {
		return parseErrorf(line, "tempo header needs a bpm and an optional beat: %q", text)
	}
	bpm, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || bpm <= 0 {
		return parseErrorf(line, "invalid tempo %q", fields[1])
	}
	var beat float64
	if len(fields) == 3 {
		beat, err = strconv.ParseFloat(fields[2], 64)
		if err != nil || beat < 0 {
			return parseErrorf(line, "invalid tempo beat %q", fields[2])
		}
	}
	ctx.tempos.Add(beat, bpm)
	return nil
}

func (ctx *parseContext) build() (*model.Grid, error) {
	if len(ctx.rows) == 0 {
		return nil, &ParseError{Msg: "no data rows"}
	}
	numVoices := len(ctx.rows[0].fields)
	if numVoices == 0 {
		return nil, parseErrorf(ctx.rows[0].line, "data row has no voice columns")
	}

	g := &model.Grid{
		Tempos:     ctx.tempos,
		Directives: ctx.directives,
	}
	for v := range ctx.defaults {
		if v >= numVoices {
			return nil, parseErrorf(1, "patch for voice %d but the grid has %d voices", v, numVoices)
		}
	}
	for i, d := range ctx.directives {
		if d.Voice >= numVoices {
			return nil, parseErrorf(ctx.directiveLines[i], "patch directive for voice %d but the grid has %d voices", d.Voice, numVoices)
		}
	}

	for v := 0; v < numVoices; v++ {
		voice := model.Voice{Index: v, Label: fmt.Sprintf("V%d", v), Patch: ctx.opts.DefaultPatch}
		if label, ok := ctx.labels[v]; ok {
			voice.Label = label
		}
		if p, ok := ctx.defaults[v]; ok {
			voice.Patch = p
		}
		g.Voices = append(g.Voices, voice)
	}

	for i, row := range ctx.rows {
		beat := row.beat
		if !row.beatOK {
			beat = float64(i)
			ctx.logger.Warn("beat column is not a number, using the row index",
				zap.Int("line", row.line), zap.Float64("beat", beat))
		}
		if i > 0 && beat <= g.Beats[i-1] {
			return nil, parseErrorf(row.line, "beat %v does not come after %v", util.FormatNumber(beat, 3), util.FormatNumber(g.Beats[i-1], 3))
		}
		g.Beats = append(g.Beats, beat)
		g.Lines = append(g.Lines, row.line)
		g.Annotations = append(g.Annotations, row.annotation)

		if len(row.fields) > numVoices {
			ctx.logger.Warn("ignoring extra cells", zap.Int("line", row.line), zap.Int("cells", len(row.fields)))
		}
		for v := 0; v < numVoices; v++ {
			var field string
			if v < len(row.fields) {
				field = row.fields[v]
			}
			cell, err := ParseCell(field)
			if err != nil {
				return nil, &ParseError{Line: row.line, Msg: err.Error()}
			}
			g.Voices[v].Cells = append(g.Voices[v].Cells, cell)
		}
	}

	if err := InferDurations(g); err != nil {
		return nil, err
	}
	return g, nil
}
