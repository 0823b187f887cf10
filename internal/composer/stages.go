package composer

import (
	"iter"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/enumerate"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/rules"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Stage names as they appear in audit entries.
const (
	KeyStageName   = "KeyStage"
	ModeStageName  = "ModeStage"
	ChordStageName = "ChordStage"
)

func none[T any]() iter.Seq[T] { return func(func(T) bool) {} }

// NewKeyStage proposes keys from candidates (C Ionian when both candidates
// and domain are empty) and sets the current key.
func NewKeyStage(candidates []relations.KeyID, domain *enumerate.KeyDomain) *engine.Stage[relations.KeyID] {
	propose := func(ctx *engine.Context) iter.Seq[relations.KeyID] {
		return enumerate.NewKeyGenerator(candidates, ctx.Rand).Propose(domain)
	}
	apply := func(ctx *engine.Context, k relations.KeyID) { ctx.Key = &k }
	return engine.NewStage(KeyStageName, propose, apply)
}

// NewModeStage proposes modes inside the current key, constrained by the
// color shift from the previous step's mode, and sets the current mode.
func NewModeStage(domain *enumerate.ModeDomain, includeSubV bool) *engine.Stage[relations.ModeID] {
	propose := func(ctx *engine.Context) iter.Seq[relations.ModeID] {
		if ctx.Key == nil {
			return none[relations.ModeID]()
		}
		key, err := ctx.Key.Resolve()
		if err != nil {
			return none[relations.ModeID]()
		}
		var prev *theory.Mode
		if last, ok := ctx.Last(); ok {
			if m, err := last.Mode.Resolve(key); err == nil {
				prev = m
			}
		}
		return enumerate.NewModeGenerator(includeSubV, ctx.Rand).Propose(key, domain, prev)
	}
	apply := func(ctx *engine.Context, m relations.ModeID) { ctx.Mode = &m }

	s := engine.NewStage(ModeStageName, propose, apply)
	s.Rules = rules.DefaultModeRules()
	return s
}

// NewChordStage proposes chords inside the current mode. Applying a chord
// appends the (key, mode, chord) triple and clears the current mode.
func NewChordStage(domain *enumerate.ChordDomain, scorers []engine.Scorer[relations.ChordID]) *engine.Stage[relations.ChordID] {
	propose := func(ctx *engine.Context) iter.Seq[relations.ChordID] {
		if ctx.Key == nil || ctx.Mode == nil {
			return none[relations.ChordID]()
		}
		key, err := ctx.Key.Resolve()
		if err != nil {
			return none[relations.ChordID]()
		}
		mode, err := ctx.Mode.Resolve(key)
		if err != nil {
			return none[relations.ChordID]()
		}
		return enumerate.NewChordGenerator(ctx.Rand).Propose(mode, domain)
	}
	apply := func(ctx *engine.Context, c relations.ChordID) {
		if ctx.Key == nil || ctx.Mode == nil {
			return
		}
		ctx.Progression = append(ctx.Progression, relations.Triple{Key: *ctx.Key, Mode: *ctx.Mode, Chord: c})
		ctx.Mode = nil
	}

	s := engine.NewStage(ChordStageName, propose, apply)
	s.Rules = rules.DefaultChordRules()
	s.Scorers = scorers
	s.Gate = &engine.Gate[relations.ChordID]{
		Name:    "CadenceReachabilityGate",
		Code:    "dp_gate",
		Message: "goal unreachable after candidate",
		Pass:    cadenceReachable,
	}
	return s
}

// cadenceReachable rejects a chord after which the scheduled cadence can no
// longer be completed.
func cadenceReachable(ctx *engine.Context, c relations.ChordID) bool {
	if ctx.Goals == nil || ctx.Goals.Cadence == nil || ctx.Mode == nil {
		return true
	}
	last := theory.NoDegree
	if t, ok := ctx.Last(); ok {
		last = t.AbsoluteRoot()
	}
	root := relations.ToKeyRoot(*ctx.Mode, c.Degree)
	if last != theory.NoDegree && root == last {
		return false
	}
	if ctx.Memo == nil {
		return true
	}
	return goals.CanReach(ctx.Goals, len(ctx.Progression)+1, last, root, ctx.Memo)
}

// StageFactories builds fresh stages for each position. Nil fields fall back
// to the default stages.
type StageFactories struct {
	Key   func() engine.Step
	Mode  func() engine.Step
	Chord func() engine.Step
}

// BuildStages lays out one key stage followed by a mode and chord stage per
// step, or a key stage before every step when perStepKey is set.
func BuildStages(length int, perStepKey bool, f StageFactories) []engine.Step {
	if length <= 0 {
		return nil
	}
	if f.Key == nil {
		f.Key = func() engine.Step { return NewKeyStage(nil, nil) }
	}
	if f.Mode == nil {
		f.Mode = func() engine.Step { return NewModeStage(nil, false) }
	}
	if f.Chord == nil {
		f.Chord = func() engine.Step { return NewChordStage(nil, nil) }
	}

	var steps []engine.Step
	if !perStepKey {
		steps = append(steps, f.Key())
	}
	for i := 0; i < length; i++ {
		if perStepKey {
			steps = append(steps, f.Key())
		}
		steps = append(steps, f.Mode(), f.Chord())
	}
	return steps
}
