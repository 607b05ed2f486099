package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsphweid/midgrid/config"
	"github.com/jsphweid/midgrid/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const serveGrid = `// Patch S: 73
0 | C5 | E4
1 | D5 | E4
2 | C5 | C4
`

func post(t *testing.T, path string, body []byte) *http.Response {
	ConfigureServer(config.Default(), zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	return w.Result()
}

func TestAnalyzeEndpoint(t *testing.T) {
	resp := post(t, "/analyze", []byte(serveGrid))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out model.AnalyzeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"S", "V1"}, out.Voices)
	require.Len(t, out.Beats, 3)
	assert.Equal(t, "Minor 6th", out.Beats[0].Pairs[0].Interval)
	assert.Equal(t, "oblique", out.Beats[1].Pairs[0].Motion)
}

func TestCompileThenRenderEndpoints(t *testing.T) {
	resp := post(t, "/compile", []byte(serveGrid))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var compiled model.CompileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&compiled))
	assert.True(t, bytes.HasPrefix(compiled.Midi, []byte("MThd")))
	assert.Contains(t, compiled.Report, "beat 0\n")

	resp = post(t, "/render", compiled.Midi)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "C5")
	assert.Contains(t, string(text), "D5")
}

func TestRenderWindow(t *testing.T) {
	resp := post(t, "/compile", []byte(serveGrid))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var compiled model.CompileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&compiled))

	resp = post(t, "/render?from=1&to=2", compiled.Midi)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "D5")
	assert.NotContains(t, string(text), "C5")

	resp = post(t, "/render?from=10", compiled.Midi)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, "/render?from=soon", compiled.Midi)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseErrorIsBadRequest(t *testing.T) {
	resp := post(t, "/analyze", []byte("0 | C4:3 | E4\n1 | D4 | F4\n"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, strings.HasPrefix(out.Error, "parse error"))
}

func TestRenderRejectsGarbage(t *testing.T) {
	resp := post(t, "/render", []byte("not a midi file"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOnlyPostIsRouted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/analyze", nil)
	w := httptest.NewRecorder()
	NewRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode)
}

func TestReportPath(t *testing.T) {
	assert.Equal(t, "out/song.counterpoint", reportPath("out/song.mid", ".counterpoint"))
	assert.Equal(t, "song.counterpoint", reportPath("song", ".counterpoint"))
}
