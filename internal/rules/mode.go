package rules

import (
	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

type category uint8

const (
	catMain category = iota
	catRelative
	catSubstitute
	catSubV
)

func categorize(key relations.KeyID, m relations.ModeID) category {
	switch {
	case m.Access == relations.Relative && m.Degree == theory.I:
		return catMain
	case m.Access == relations.Substitute && m.Type == key.Main:
		return catMain
	case m.Access == relations.Relative:
		return catRelative
	case m.Access == relations.Substitute:
		return catSubstitute
	}
	return catSubV
}

// ModeTransition limits how consecutive modes may change. Relative and
// substitute modes never follow each other directly; a SubV mode only pairs
// with the relative mode of the same degree.
type ModeTransition struct{}

func (ModeTransition) Name() string { return "ModeTransition" }

func (ModeTransition) Check(ctx *engine.Context, cand relations.ModeID) *engine.Violation {
	if ctx.Key == nil {
		return nil
	}
	last, ok := ctx.Last()
	if !ok {
		return nil
	}
	prev := categorize(*ctx.Key, last.Mode)
	next := categorize(*ctx.Key, cand)

	if prev == catSubV || next == catSubV {
		sameDegree := last.Mode.HasDegreeRole() && cand.HasDegreeRole() && last.Mode.Degree == cand.Degree
		if sameDegree && ((prev == catSubV && next == catRelative) || (prev == catRelative && next == catSubV)) {
			return nil
		}
		return &engine.Violation{Code: "mode_transition", Message: "subv only moves to or from the same-degree relative mode"}
	}
	if (prev == catRelative && next == catSubstitute) || (prev == catSubstitute && next == catRelative) {
		return &engine.Violation{Code: "mode_transition", Message: "relative and substitute modes cannot follow each other"}
	}
	return nil
}
