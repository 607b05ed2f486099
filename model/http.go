package model

type PairReport struct {
	First        int     `json:"first"`
	Second       int     `json:"second"`
	Interval     string  `json:"interval"`
	Semitones    int     `json:"semitones"`
	Motion       string  `json:"motion"`
	Score        float64 `json:"score"`
	PhaseAligned bool    `json:"phase_aligned"`
}

type BeatReport struct {
	Beat       float64      `json:"beat"`
	Annotation string       `json:"annotation,omitempty"`
	Pairs      []PairReport `json:"pairs"`
}

type AnalyzeResponse struct {
	Voices []string     `json:"voices"`
	Beats  []BeatReport `json:"beats"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

// CompileResponse carries the encoded file base64 encoded by encoding/json.
type CompileResponse struct {
	Midi   []byte `json:"midi"`
	Report string `json:"report"`
}
