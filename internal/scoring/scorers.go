package scoring

import (
	"fmt"
	"log"
	"math"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
)

// DefaultWindow is the number of steps a window model sees.
const DefaultWindow = 8

// WindowModel scores a window of step vectors whose last row is the
// candidate step.
type WindowModel interface {
	ScoreWindow(window [][]float64) (float64, error)
}

// WindowScorer feeds the progression history plus the candidate to a
// WindowModel. Resolution or model failures score 0.
type WindowScorer struct {
	Model  WindowModel
	Window int
}

func NewWindowScorer(model WindowModel) *WindowScorer {
	return &WindowScorer{Model: model, Window: DefaultWindow}
}

func (s *WindowScorer) Name() string { return "WindowScorer" }

func (s *WindowScorer) Score(ctx *engine.Context, cand relations.ChordID) float64 {
	if ctx.Key == nil || ctx.Mode == nil {
		return 0
	}

	history := ctx.Progression
	if len(history) > s.Window {
		history = history[len(history)-s.Window:]
	}
	vectors := make([][]float64, 0, len(history)+1)
	for _, t := range history {
		v, err := TripleVector(t)
		if err != nil {
			return 0
		}
		vectors = append(vectors, v)
	}
	v, err := TripleVector(relations.Triple{Key: *ctx.Key, Mode: *ctx.Mode, Chord: cand})
	if err != nil {
		return 0
	}
	vectors = append(vectors, v)

	score, err := s.Model.ScoreWindow(PadWindow(vectors, s.Window))
	if err != nil {
		log.Printf("⚠️  window model failed for %s: %v", cand, err)
		return 0
	}
	return score
}

// TriadPreference favors chords with Size notes. The score is 1 for an
// exact match and falls off as 1/(1+distance).
type TriadPreference struct {
	Size   int
	Weight float64
}

func NewTriadPreference() TriadPreference { return TriadPreference{Size: 3, Weight: 1} }

func (TriadPreference) Name() string { return "TriadPreference" }

func (p TriadPreference) Score(_ *engine.Context, cand relations.ChordID) float64 {
	dist := math.Abs(float64(cand.EffectiveComposition().Len() - p.Size))
	return p.Weight / (1 + dist)
}

// Scorer names accepted by Build.
const (
	ScorerTriadPreference = "triad_preference"
	ScorerLinearWindow    = "linear_window"
)

// Build resolves scorer names. linear_window requires model.
func Build(names []string, model *LinearModel) ([]engine.Scorer[relations.ChordID], error) {
	var out []engine.Scorer[relations.ChordID]
	for _, name := range names {
		switch name {
		case ScorerTriadPreference:
			out = append(out, NewTriadPreference())
		case ScorerLinearWindow:
			if model == nil {
				return nil, fmt.Errorf("scorer %q needs a linear model", name)
			}
			out = append(out, NewWindowScorer(model))
		default:
			return nil, fmt.Errorf("unknown scorer %q", name)
		}
	}
	return out, nil
}
