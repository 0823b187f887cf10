// Package rules holds the hard constraints applied by the mode and chord
// stages. A rule either passes a candidate or returns a violation; it never
// fails the whole run.
package rules

import (
	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// ChordRule and ModeRule are the rule shapes used by the composer stages.
type (
	ChordRule = engine.Rule[relations.ChordID]
	ModeRule  = engine.Rule[relations.ModeID]
)

// DefaultChordRules returns the chord stage constraints in evaluation order.
func DefaultChordRules() []ChordRule {
	return []ChordRule{
		StartChord{},
		Resolution{},
		FunctionFlow{},
		TurningPoint{},
		ModeDisambiguation{},
		CadenceGoal{},
		RootNoRepeat{},
		RootPattern{},
		RootCadencePosition{},
	}
}

// DefaultModeRules returns the mode stage constraints.
func DefaultModeRules() []ModeRule {
	return []ModeRule{ModeTransition{}}
}

// AllOf fails with the first violation among its rules.
type AllOf[T any] struct {
	Rules []engine.Rule[T]
}

func (AllOf[T]) Name() string { return "AllOf" }

func (a AllOf[T]) Check(ctx *engine.Context, cand T) *engine.Violation {
	for _, r := range a.Rules {
		if v := r.Check(ctx, cand); v != nil {
			return v
		}
	}
	return nil
}

// AnyOf passes when any rule passes and otherwise reports the last violation.
// An empty AnyOf passes.
type AnyOf[T any] struct {
	Rules []engine.Rule[T]
}

func (AnyOf[T]) Name() string { return "AnyOf" }

func (a AnyOf[T]) Check(ctx *engine.Context, cand T) *engine.Violation {
	var last *engine.Violation
	for _, r := range a.Rules {
		v := r.Check(ctx, cand)
		if v == nil {
			return nil
		}
		last = v
	}
	return last
}

// candidate resolves the chord candidate under the context's current key and
// mode. ok is false when either is unset or the triple does not resolve.
func candidate(ctx *engine.Context, cand relations.ChordID) (relations.Triple, relations.ResolvedTriple, bool) {
	if ctx.Key == nil || ctx.Mode == nil {
		return relations.Triple{}, relations.ResolvedTriple{}, false
	}
	t := relations.Triple{Key: *ctx.Key, Mode: *ctx.Mode, Chord: cand}
	r, err := t.Resolve()
	if err != nil {
		return relations.Triple{}, relations.ResolvedTriple{}, false
	}
	return t, r, true
}

// previous resolves the last committed triple under its own key.
func previous(ctx *engine.Context) (relations.Triple, relations.ResolvedTriple, bool) {
	t, ok := ctx.Last()
	if !ok {
		return relations.Triple{}, relations.ResolvedTriple{}, false
	}
	r, err := t.Resolve()
	if err != nil {
		return relations.Triple{}, relations.ResolvedTriple{}, false
	}
	return t, r, true
}

// rootsWith appends the candidate's absolute root to the progression roots.
func rootsWith(ctx *engine.Context, cand relations.ChordID) []theory.Degree {
	roots := ctx.Roots()
	if ctx.Mode != nil {
		roots = append(roots, relations.ToKeyRoot(*ctx.Mode, cand.Degree))
	}
	return roots
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}
