package rules

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

var (
	cIonian  = relations.KeyID{Tonic: theory.C, Main: theory.Ionian}
	aAeolian = relations.KeyID{Tonic: theory.A, Main: theory.Aeolian}
	tonic    = relations.RelativeMode(theory.I)
)

func base(d theory.Degree, comp ...theory.Degree) relations.ChordID {
	return relations.ChordID{Degree: d, Variant: theory.Base, Composition: theory.NewDegreeSet(comp...)}
}

func step(key relations.KeyID, mode relations.ModeID, chord relations.ChordID) relations.Triple {
	return relations.Triple{Key: key, Mode: mode, Chord: chord}
}

// chain builds tonic-mode steps in key from chord degrees.
func chain(key relations.KeyID, degrees ...theory.Degree) []relations.Triple {
	out := make([]relations.Triple, len(degrees))
	for i, d := range degrees {
		out[i] = step(key, tonic, base(d))
	}
	return out
}

func newCtx(key relations.KeyID, mode relations.ModeID, prog []relations.Triple) *engine.Context {
	ctx := engine.NewContext(rand.New(rand.NewPCG(0, 0)))
	ctx.Key = &key
	ctx.Mode = &mode
	ctx.Progression = prog
	return ctx
}

type chordCase struct {
	name     string
	ctx      *engine.Context
	cand     relations.ChordID
	wantCode string
}

func runChordCases(t *testing.T, rule ChordRule, tests []chordCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rule.Check(tt.ctx, tt.cand)
			if tt.wantCode == "" {
				assert.Nil(t, v)
				return
			}
			if assert.NotNil(t, v) {
				assert.Equal(t, tt.wantCode, v.Code)
			}
		})
	}
}

func TestStartChord(t *testing.T) {
	ascending := relations.ChordID{Degree: theory.VI, Variant: theory.Ascending}
	runChordCases(t, StartChord{}, []chordCase{
		{"tonic", newCtx(cIonian, tonic, nil), base(theory.I), ""},
		{"subdominant", newCtx(cIonian, tonic, nil), base(theory.IV), ""},
		{"submediant", newCtx(cIonian, tonic, nil), base(theory.VI), ""},
		{"supertonic", newCtx(cIonian, tonic, nil), base(theory.II), "start_chord"},
		{"main type by substitution", newCtx(cIonian, relations.SubstituteMode(theory.Ionian), nil), base(theory.IV), ""},
		{"relative mode", newCtx(cIonian, relations.RelativeMode(theory.II), nil), base(theory.I), "start_chord"},
		{"non-base variant", newCtx(aAeolian, tonic, nil), ascending, "start_chord"},
		{"only the first step", newCtx(cIonian, tonic, chain(cIonian, theory.I)), base(theory.II), ""},
	})
}

func TestResolution(t *testing.T) {
	afterDim := chain(cIonian, theory.VII)
	runChordCases(t, Resolution{}, []chordCase{
		{"dim fifth falls a semitone", newCtx(cIonian, tonic, afterDim), base(theory.I), ""},
		{"dim fifth held", newCtx(cIonian, tonic, afterDim), base(theory.II), "resolution"},
		{"major chord is free", newCtx(cIonian, tonic, chain(cIonian, theory.V)), base(theory.II), ""},
		{"first step", newCtx(cIonian, tonic, nil), base(theory.II), ""},
	})
}

func TestFunctionFlow(t *testing.T) {
	afterDominant := chain(cIonian, theory.V)
	runChordCases(t, FunctionFlow{}, []chordCase{
		{"dominant to subdominant", newCtx(cIonian, tonic, afterDominant), base(theory.IV), "function_flow"},
		{"dominant to tonic", newCtx(cIonian, tonic, afterDominant), base(theory.I), ""},
		{"subdominant to dominant", newCtx(cIonian, tonic, chain(cIonian, theory.IV)), base(theory.V), ""},
	})
}

func TestTurningPoint(t *testing.T) {
	leading := []relations.Triple{
		step(aAeolian, tonic, relations.ChordID{Degree: theory.V, Variant: theory.Ascending}),
	}
	runChordCases(t, TurningPoint{}, []chordCase{
		{"raised seventh reaches the fifth", newCtx(aAeolian, tonic, leading), base(theory.I), ""},
		{"raised seventh abandoned", newCtx(aAeolian, tonic, leading), base(theory.IV), "turning_point"},
		{"base variant is free", newCtx(aAeolian, tonic, chain(aAeolian, theory.V)), base(theory.IV), ""},
	})
}

func TestModeDisambiguation(t *testing.T) {
	dorian := relations.RelativeMode(theory.II)
	runChordCases(t, ModeDisambiguation{}, []chordCase{
		{"plain triad in relative mode", newCtx(cIonian, dorian, nil), base(theory.I, theory.I, theory.III, theory.V), "mode_disambiguation"},
		{"carries the dorian sixth", newCtx(cIonian, dorian, nil), base(theory.IV, theory.I, theory.III), ""},
		{"default composition", newCtx(cIonian, dorian, nil), base(theory.I), ""},
		{"tonic relative", newCtx(cIonian, tonic, nil), base(theory.I, theory.I, theory.III, theory.V), ""},
		{"substitute mode", newCtx(cIonian, relations.SubstituteMode(theory.Dorian), nil), base(theory.I, theory.I, theory.III, theory.V), ""},
	})
}

func TestCadenceGoal(t *testing.T) {
	withGoals := func(mode relations.ModeID, prog []relations.Triple) *engine.Context {
		ctx := newCtx(cIonian, mode, prog)
		ctx.Goals = &goals.Schedule{Length: 3, Cadence: goals.DefaultCadence()}
		return ctx
	}
	runChordCases(t, CadenceGoal{}, []chordCase{
		{"subdominant slot accepts II", withGoals(tonic, nil), base(theory.II), ""},
		{"subdominant slot rejects V", withGoals(tonic, nil), base(theory.V), "goal_cadence_sdt"},
		{"absolute root through relative mode", withGoals(relations.RelativeMode(theory.II), nil), base(theory.I), ""},
		{"dominant slot", withGoals(tonic, chain(cIonian, theory.IV)), base(theory.V), ""},
		{"tonic slot", withGoals(tonic, chain(cIonian, theory.IV, theory.V)), base(theory.VI), "goal_cadence_sdt"},
		{"no schedule", newCtx(cIonian, tonic, nil), base(theory.V), ""},
	})
}

func TestRootRules(t *testing.T) {
	t.Run("no repeat", func(t *testing.T) {
		runChordCases(t, RootNoRepeat{}, []chordCase{
			{"same root", newCtx(cIonian, tonic, chain(cIonian, theory.I)), base(theory.I), "root_repeat"},
			{"same root through relative mode", newCtx(cIonian, relations.RelativeMode(theory.IV), chain(cIonian, theory.IV)), base(theory.I), "root_repeat"},
			{"different root", newCtx(cIonian, tonic, chain(cIonian, theory.I)), base(theory.V), ""},
		})
	})

	t.Run("pattern", func(t *testing.T) {
		runChordCases(t, RootPattern{}, []chordCase{
			{"stepwise run", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.II, theory.III)), base(theory.VI), ""},
			{"no pattern", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.II, theory.IV)), base(theory.I), "root_pattern"},
			{"too short", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.II)), base(theory.IV), ""},
		})
	})

	t.Run("cadence position", func(t *testing.T) {
		runChordCases(t, RootCadencePosition{}, []chordCase{
			{"falling step into the fourth", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.IV, theory.V)), base(theory.I), ""},
			{"no cadential motion", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.III, theory.II)), base(theory.V), "root_cadence"},
			{"not a fourth step", newCtx(cIonian, tonic, chain(cIonian, theory.I, theory.III)), base(theory.II), ""},
		})
	})
}

func TestModeTransition(t *testing.T) {
	after := func(prev relations.ModeID) *engine.Context {
		ctx := newCtx(cIonian, tonic, []relations.Triple{step(cIonian, prev, base(theory.I))})
		ctx.Mode = nil
		return ctx
	}
	tests := []struct {
		name     string
		ctx      *engine.Context
		cand     relations.ModeID
		wantCode string
	}{
		{"first mode", newCtx(cIonian, tonic, nil), relations.SubVMode(theory.II), ""},
		{"relative to main", after(relations.RelativeMode(theory.II)), relations.RelativeMode(theory.I), ""},
		{"relative to relative", after(relations.RelativeMode(theory.II)), relations.RelativeMode(theory.V), ""},
		{"relative to substitute", after(relations.RelativeMode(theory.II)), relations.SubstituteMode(theory.Dorian), "mode_transition"},
		{"substitute to relative", after(relations.SubstituteMode(theory.Aeolian)), relations.RelativeMode(theory.VI), "mode_transition"},
		{"main substitute to relative", after(relations.SubstituteMode(theory.Ionian)), relations.RelativeMode(theory.VI), ""},
		{"relative to same-degree subv", after(relations.RelativeMode(theory.II)), relations.SubVMode(theory.II), ""},
		{"subv back to relative", after(relations.SubVMode(theory.II)), relations.RelativeMode(theory.II), ""},
		{"relative to other subv", after(relations.RelativeMode(theory.II)), relations.SubVMode(theory.III), "mode_transition"},
		{"main to subv", after(relations.SubstituteMode(theory.Ionian)), relations.SubVMode(theory.II), "mode_transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ModeTransition{}.Check(tt.ctx, tt.cand)
			if tt.wantCode == "" {
				assert.Nil(t, v)
				return
			}
			if assert.NotNil(t, v) {
				assert.Equal(t, tt.wantCode, v.Code)
			}
		})
	}
}

func TestCombinators(t *testing.T) {
	ctx := newCtx(cIonian, tonic, chain(cIonian, theory.I))
	repeat := base(theory.I)
	fresh := base(theory.V)

	all := AllOf[relations.ChordID]{Rules: []ChordRule{RootNoRepeat{}, StartChord{}}}
	assert.Equal(t, "root_repeat", all.Check(ctx, repeat).Code)
	assert.Nil(t, all.Check(ctx, fresh))

	anyOf := AnyOf[relations.ChordID]{Rules: []ChordRule{RootNoRepeat{}, CadenceGoal{}}}
	assert.Nil(t, anyOf.Check(ctx, repeat))
	assert.Nil(t, AnyOf[relations.ChordID]{}.Check(ctx, repeat))

	failing := AnyOf[relations.ChordID]{Rules: []ChordRule{RootNoRepeat{}, Resolution{}}}
	afterDim := newCtx(cIonian, tonic, chain(cIonian, theory.VII))
	assert.Equal(t, "resolution", failing.Check(afterDim, base(theory.VII)).Code)
}

func TestDefaultRules(t *testing.T) {
	names := make([]string, 0)
	for _, r := range DefaultChordRules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{
		"StartChord", "Resolution", "FunctionFlow", "TurningPoint", "ModeDisambiguation",
		"CadenceGoal", "RootNoRepeat", "RootPattern", "RootCadencePosition",
	}, names)
	assert.Len(t, DefaultModeRules(), 1)
}
