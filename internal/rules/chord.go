package rules

import (
	"fmt"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/resolve"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// StartChord requires the first chord to sit in the key's main mode type,
// use the Base variant and have degree I, IV or VI.
type StartChord struct{}

var startDegrees = theory.NewDegreeSet(theory.I, theory.IV, theory.VI)

func (StartChord) Name() string { return "StartChord" }

func (StartChord) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	if len(ctx.Progression) > 0 {
		return nil
	}
	_, cur, ok := candidate(ctx, cand)
	if !ok {
		return nil
	}
	if cur.Mode.Type() == cur.Key.MainType() && cand.Variant == theory.Base && startDegrees.Has(cand.Degree) {
		return nil
	}
	return &engine.Violation{Code: "start_chord", Message: "invalid start chord"}
}

// Resolution makes the fifth of a diminished or augmented chord resolve:
// down one or two semitones after dim, up one after aug.
type Resolution struct{}

func (Resolution) Name() string { return "Resolution" }

func directedDelta(target, src int) int { return mod12(target-src+6) - 6 }

func (Resolution) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	_, prev, ok := previous(ctx)
	if !ok {
		return nil
	}
	_, cur, ok := candidate(ctx, cand)
	if !ok {
		return nil
	}

	var allowed []int
	switch prev.Chord.Quality().Kind {
	case theory.QualDim:
		allowed = []int{-1, -2}
	case theory.QualAug:
		allowed = []int{1}
	default:
		return nil
	}

	src := prev.Chord.NoteAt(theory.V).Offset()
	for _, n := range cur.Chord.Notes() {
		delta := directedDelta(n.Offset(), src)
		for _, a := range allowed {
			if delta == a {
				return nil
			}
		}
	}
	return &engine.Violation{Code: "resolution", Message: "resolution rule violated"}
}

type function uint8

const (
	tonicFn function = 1 << iota
	subdominantFn
	dominantFn
)

// functionsIn classifies a chord by the notes it holds relative to the mode
// tonic: the tonic itself, a perfect fourth, a major seventh.
func functionsIn(chord *theory.Chord, mode *theory.Mode) function {
	tonic := mode.Tonic().Offset()
	var f function
	for _, n := range chord.Notes() {
		switch mod12(n.Offset() - tonic) {
		case 0:
			f |= tonicFn
		case 5:
			f |= subdominantFn
		case 11:
			f |= dominantFn
		}
	}
	return f
}

// FunctionFlow forbids Dominant followed by Subdominant, judged in both the
// previous and the current mode.
type FunctionFlow struct{}

func (FunctionFlow) Name() string { return "FunctionFlow" }

func (FunctionFlow) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	_, prev, ok := previous(ctx)
	if !ok {
		return nil
	}
	_, cur, ok := candidate(ctx, cand)
	if !ok {
		return nil
	}
	for _, frame := range []*theory.Mode{prev.Mode, cur.Mode} {
		if functionsIn(prev.Chord, frame)&dominantFn != 0 && functionsIn(cur.Chord, frame)&subdominantFn != 0 {
			return &engine.Violation{Code: "function_flow", Message: "function flow forbidden"}
		}
	}
	return nil
}

var turningDegrees = theory.NewDegreeSet(theory.VI, theory.VII)

// TurningPoint requires an altered sixth or seventh in the previous chord to
// move to its target note in the current chord.
type TurningPoint struct{}

func (TurningPoint) Name() string { return "TurningPoint" }

func (TurningPoint) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	prevID, prev, ok := previous(ctx)
	if !ok || prevID.Chord.Variant == theory.Base {
		return nil
	}
	variant := prevID.Chord.Variant
	focus := prev.Chord.Composition().Shift(prevID.Chord.Degree).Intersect(turningDegrees)
	if focus.Empty() {
		return nil
	}

	var targets []theory.BaseNote
	for _, d := range focus.Degrees() {
		tp, ok := resolve.TurningPointOf(d, variant)
		if !ok {
			continue
		}
		target := tp.Next()
		v := variant
		if target.HasVariant {
			v = target.Variant
		}
		scale, err := prev.Mode.Scale(v)
		if err != nil {
			continue
		}
		targets = append(targets, scale.Note(target.Degree))
	}
	if len(targets) == 0 {
		return nil
	}

	_, cur, ok := candidate(ctx, cand)
	if !ok {
		return nil
	}
	for _, n := range targets {
		if !cur.Chord.Contains(n) {
			return &engine.Violation{Code: "turning_point", Message: "turning point not resolved"}
		}
	}
	return nil
}

// ModeDisambiguation rejects Base chords with an explicit composition in a
// non-tonic relative mode unless they contain that mode's characteristic
// degree. Such a chord is otherwise a mere relabeling of a main-mode chord.
type ModeDisambiguation struct{}

func (ModeDisambiguation) Name() string { return "ModeDisambiguation" }

func (ModeDisambiguation) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	if ctx.Mode == nil || ctx.Mode.Access != relations.Relative || ctx.Mode.Degree == theory.I {
		return nil
	}
	if cand.Variant != theory.Base || cand.Composition.Empty() {
		return nil
	}
	_, cur, ok := candidate(ctx, cand)
	if !ok {
		return nil
	}
	if cand.Composition.Shift(cand.Degree).Has(cur.Mode.CharacteristicDegree()) {
		return nil
	}
	return &engine.Violation{
		Code:    "mode_disambiguation",
		Message: "relative Base chord must carry the mode's characteristic degree",
	}
}

// CadenceGoal enforces the scheduled cadence roots on the closing steps.
type CadenceGoal struct{}

func (CadenceGoal) Name() string { return "CadenceGoal" }

func (CadenceGoal) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	if ctx.Goals == nil || ctx.Goals.Cadence == nil || ctx.Mode == nil {
		return nil
	}
	index := len(ctx.Progression)
	allowed, ok := ctx.Goals.AllowedRootsAt(index)
	if !ok {
		return nil
	}
	root := relations.ToKeyRoot(*ctx.Mode, cand.Degree)
	if allowed.Has(root) {
		return nil
	}
	return &engine.Violation{
		Code:    "goal_cadence_sdt",
		Message: fmt.Sprintf("cadence goal not met: step=%d, root=%s", index, root),
	}
}

// RootNoRepeat forbids equal adjacent absolute roots.
type RootNoRepeat struct{}

func (RootNoRepeat) Name() string { return "RootNoRepeat" }

func (RootNoRepeat) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	roots := rootsWith(ctx, cand)
	for i := 1; i < len(roots); i++ {
		if roots[i] == roots[i-1] {
			return &engine.Violation{Code: "root_repeat", Message: "adjacent roots repeat"}
		}
	}
	return nil
}

// RootPattern looks at the last four roots and accepts them when any three
// form an arithmetic run, or the last step mirrors the first.
type RootPattern struct{}

func (RootPattern) Name() string { return "RootPattern" }

func (RootPattern) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	roots := rootsWith(ctx, cand)
	if len(roots) < 4 {
		return nil
	}
	r := roots[len(roots)-4:]
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if r[k].Sub(r[j]) == r[j].Sub(r[i]) {
					return nil
				}
			}
		}
	}
	if r[3].Sub(r[2]) == r[1].Sub(r[0]) {
		return nil
	}
	return &engine.Violation{Code: "root_pattern", Message: "root pattern rejected"}
}

var cadenceSteps = theory.NewDegreeSet(theory.VII, theory.III, theory.V)

// RootCadencePosition checks every fourth step for a cadential root motion.
type RootCadencePosition struct{}

func (RootCadencePosition) Name() string { return "RootCadencePosition" }

func (RootCadencePosition) Check(ctx *engine.Context, cand relations.ChordID) *engine.Violation {
	roots := rootsWith(ctx, cand)
	n := len(roots)
	if n == 0 || n%4 != 0 {
		return nil
	}
	if cadenceSteps.Has(roots[n-3].Sub(roots[n-2])) {
		return nil
	}
	if cadenceSteps.Has(roots[n-4].Sub(roots[n-3])) && cadenceSteps.Has(roots[n-2].Sub(roots[n-1])) {
		return nil
	}
	return &engine.Violation{Code: "root_cadence", Message: "cadence position rejected"}
}
