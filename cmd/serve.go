package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/midgrid/analysis"
	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/decode"
	"github.com/jsphweid/midgrid/grid"
	"github.com/jsphweid/midgrid/logging"
	"github.com/jsphweid/midgrid/midi"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/sample"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

var (
	serveAddr   string
	serveConfig = config.Default()
	serveLogger = zap.NewNop()
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetListenAddr(), "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the converters over HTTP",
	Long: `Serves the converters over HTTP:
  POST /render   MIDI body, midgrid response (?from=&to= beats)
  POST /compile  midgrid body, JSON response with the MIDI file and report
  POST /analyze  midgrid body, JSON report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		ConfigureServer(cfg, logger)
		logger.Info("listening", zap.String("addr", serveAddr))
		return http.ListenAndServe(serveAddr, NewRouter())
	},
}

// ConfigureServer sets the configuration and logger used by the handlers.
func ConfigureServer(cfg config.Config, logger *zap.Logger) {
	serveConfig = cfg
	serveLogger = logging.OrNop(logger)
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/render", HandleRender).Methods("POST")
	router.HandleFunc("/compile", HandleCompile).Methods("POST")
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	return cors.Default().Handler(router)
}

func requestLogger(r *http.Request) *zap.Logger {
	return serveLogger.With(zap.String("request", uuid.NewString()), zap.String("path", r.URL.Path))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func queryWindow(r *http.Request) (window, error) {
	var win window
	for name, dst := range map[string]*float64{"from": &win.from, "to": &win.to} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return win, errors.Errorf("query parameter %v must be a number", name)
		}
		*dst = v
	}
	return win, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	var pe *grid.ParseError
	var de *decode.DecodeError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &pe), errors.As(err, &de), errors.Is(err, sample.ErrEmptyWindow):
		status = http.StatusBadRequest
	case errors.As(err, &mbe):
		status = http.StatusRequestEntityTooLarge
	}
	logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func HandleRender(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	win, err := queryWindow(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}
	var out bytes.Buffer
	if err := midiToGrid(bytes.NewReader(body), &out, win, serveConfig, logger); err != nil {
		writeError(w, logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(out.Bytes())
}

func HandleCompile(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	res, err := compileGrid(bytes.NewReader(body), serveConfig, logger)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	dat, err := midi.Bytes(res.song)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CompileResponse{
		Midi:   dat,
		Report: analysis.ReportString(res.report),
	})
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r)
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	resp, err := analyzeGrid(bytes.NewReader(body), serveConfig, logger)
	if err != nil {
		writeError(w, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
