package models

import "github.com/Conceptual-Machines/harmony-api/internal/engine"

// KeySpec names a key by natural tonic letter and main mode type
type KeySpec struct {
	Tonic string `json:"tonic" binding:"required"`
	Main  string `json:"main" binding:"required"`
}

// GenerationRequest is the body of POST /api/v1/generate. Zero fields fall
// back to the preset, then to server defaults.
type GenerationRequest struct {
	Preset string `json:"preset,omitempty"`
	Length int    `json:"length,omitempty"`
	Seed   *int64 `json:"seed,omitempty"` // Optional seed for reproducibility

	// Search parameters
	BeamWidth    int  `json:"beam_width,omitempty"`
	StageBudget  int  `json:"stage_budget,omitempty"`
	MaxAttempts  int  `json:"max_attempts,omitempty"`
	BudgetGrowth int  `json:"budget_growth,omitempty"`
	PerStepKey   bool `json:"per_step_key,omitempty"`
	NoFallback   bool `json:"no_fallback,omitempty"`

	// Musical parameters
	Cadence     bool      `json:"cadence,omitempty"` // End on subdominant, dominant, tonic
	IncludeSubV bool      `json:"include_subv,omitempty"`
	Keys        []KeySpec `json:"keys,omitempty"`
	Scorers     []string  `json:"scorers,omitempty"`
	Spread      string    `json:"spread,omitempty"` // "tight", "medium", "wide" (voicing width)
	Octave      int       `json:"octave,omitempty"`

	IncludeAudit bool `json:"include_audit,omitempty"`
}

// Step is one rendered (key, mode, chord) triple
type Step struct {
	Index int `json:"index"`

	Key   string `json:"key"`
	Mode  string `json:"mode"`
	Chord string `json:"chord"`

	Access      string   `json:"access"`
	Role        string   `json:"role"`
	Degree      string   `json:"degree"`
	Variant     string   `json:"variant"`
	Composition []string `json:"composition"`

	// AbsoluteRoot is the chord root as a degree of the key
	AbsoluteRoot string   `json:"absolute_root"`
	ModeName     string   `json:"mode_name"`
	ChordName    string   `json:"chord_name"`
	Notes        []string `json:"notes"`
	MIDI         []int    `json:"midi"`
}

// GenerationResponse is the rendered result of one search
type GenerationResponse struct {
	RunID      string         `json:"run_id"`
	Preset     string         `json:"preset,omitempty"`
	Seed       int64          `json:"seed"`
	Attempts   int            `json:"attempts"`
	Budget     int            `json:"budget"`
	Fallback   bool           `json:"fallback"`
	Cached     bool           `json:"cached"`
	DurationMS int64          `json:"duration_ms"`
	Steps      []Step         `json:"steps"`
	Rejections map[string]int `json:"rejections,omitempty"`
	Audit      []engine.Entry `json:"audit,omitempty"`
}
