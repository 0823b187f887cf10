package models

// ModeSpec picks a mode from a key: role is a roman numeral for Relative and
// SubV access, a mode type name for Substitute.
type ModeSpec struct {
	Access string `json:"access" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// ChordSpec picks a chord from a mode. An empty composition is the triad.
type ChordSpec struct {
	Degree      string   `json:"degree" binding:"required"`
	Variant     string   `json:"variant,omitempty"`
	Composition []string `json:"composition,omitempty"`
}

// TheoryRequest is shared by the theory endpoints. Chord is ignored by
// mode_in_key and required by the others.
type TheoryRequest struct {
	Key   KeySpec    `json:"key" binding:"required"`
	Mode  ModeSpec   `json:"mode" binding:"required"`
	Chord *ChordSpec `json:"chord,omitempty"`
}

// Analysis groups facts the way clients render them
type Analysis struct {
	Meta     map[string]any `json:"meta"`
	Entity   map[string]any `json:"entity"`
	Evidence map[string]any `json:"evidence"`
	Analysis map[string]any `json:"analysis"`
}

// NewAnalysis returns an Analysis with every group allocated
func NewAnalysis(kind string) *Analysis {
	return &Analysis{
		Meta:     map[string]any{"kind": kind},
		Entity:   map[string]any{},
		Evidence: map[string]any{},
		Analysis: map[string]any{},
	}
}

// TheoryResponse mirrors {"ok": true, "grouped": {...}}
type TheoryResponse struct {
	OK      bool      `json:"ok"`
	Grouped *Analysis `json:"grouped,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// PresetSummary is one entry of GET /api/v1/presets
type PresetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Length      int    `json:"length,omitempty"`
	Cadence     bool   `json:"cadence"`
}
