package engine

import (
	"fmt"
	"iter"
	"sort"
)

// Violation explains why a rule rejected a candidate.
type Violation struct {
	Code    string
	Message string
}

func (v *Violation) Error() string { return v.Code + ": " + v.Message }

// Rule is a hard constraint. A nil violation means the candidate passes.
type Rule[T any] interface {
	Name() string
	Check(ctx *Context, cand T) *Violation
}

// Scorer contributes a soft score. Stage scores are the sum over scorers.
type Scorer[T any] interface {
	Name() string
	Score(ctx *Context, cand T) float64
}

// Gate is an extra hard check run after the rules, audited under its own
// code and constraint name.
type Gate[T any] struct {
	Name    string
	Code    string
	Message string
	Pass    func(ctx *Context, cand T) bool
}

// Scored pairs a candidate with its stage score.
type Scored[T any] struct {
	Candidate T
	Score     float64
}

// Successor is a cloned context with one candidate applied.
type Successor struct {
	Context *Context
	Score   float64
}

// Step is the type-erased view of a Stage used by the Pipeline.
type Step interface {
	Name() string
	Successors(ctx *Context, topK int) []Successor
}

// Stage proposes candidates of one kind, filters them through rules and an
// optional gate, scores the survivors and applies a chosen candidate to a
// context.
type Stage[T fmt.Stringer] struct {
	name    string
	propose func(ctx *Context) iter.Seq[T]
	apply   func(ctx *Context, cand T)

	Rules   []Rule[T]
	Scorers []Scorer[T]
	Policy  Policy[T]
	Gate    *Gate[T]
}

// NewStage builds a stage with no rules, no scorers and a random policy.
func NewStage[T fmt.Stringer](name string, propose func(*Context) iter.Seq[T], apply func(*Context, T)) *Stage[T] {
	return &Stage[T]{
		name:    name,
		propose: propose,
		apply:   apply,
		Policy:  RandomPolicy[T]{},
	}
}

func (s *Stage[T]) Name() string { return s.name }

func (s *Stage[T]) reject(ctx *Context, cand T, code, message, constraint string) {
	ctx.Audit.Add(Entry{
		Stage:      s.name,
		Candidate:  cand.String(),
		Code:       code,
		Message:    message,
		Constraint: constraint,
	})
}

// admit runs every rule (all violations are audited) and then the gate.
func (s *Stage[T]) admit(ctx *Context, cand T) bool {
	ok := true
	for _, r := range s.Rules {
		if v := r.Check(ctx, cand); v != nil {
			s.reject(ctx, cand, v.Code, v.Message, r.Name())
			ok = false
		}
	}
	if !ok {
		return false
	}
	if s.Gate != nil && !s.Gate.Pass(ctx, cand) {
		s.reject(ctx, cand, s.Gate.Code, s.Gate.Message, s.Gate.Name)
		return false
	}
	return true
}

// HardFilter keeps the candidates that pass every rule and the gate.
func (s *Stage[T]) HardFilter(ctx *Context, cands iter.Seq[T]) []T {
	var passed []T
	for cand := range cands {
		if s.admit(ctx, cand) {
			passed = append(passed, cand)
		}
	}
	return passed
}

// SoftScore sums the scorers per candidate and audits each contribution.
func (s *Stage[T]) SoftScore(ctx *Context, cands []T) []Scored[T] {
	scored := make([]Scored[T], 0, len(cands))
	for _, cand := range cands {
		total := 0.0
		for _, sc := range s.Scorers {
			v := sc.Score(ctx, cand)
			total += v
			ctx.Audit.Add(Entry{
				Stage:     s.name,
				Candidate: cand.String(),
				Scorer:    sc.Name(),
				Score:     v,
			})
		}
		scored = append(scored, Scored[T]{Candidate: cand, Score: total})
	}
	return scored
}

// Expand proposes, filters and scores candidates, best first.
//
// With topK > 0 the proposal stream is read in order until topK candidates
// survive or the stream ends, so topK acts as a sampling budget rather than a
// global top-k. With topK <= 0 every proposal is examined.
func (s *Stage[T]) Expand(ctx *Context, topK int) []Scored[T] {
	var picked []T
	for cand := range s.propose(ctx) {
		if !s.admit(ctx, cand) {
			continue
		}
		picked = append(picked, cand)
		if topK > 0 && len(picked) >= topK {
			break
		}
	}

	scored := s.SoftScore(ctx, picked)
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Choose picks one candidate from a full expansion using the stage policy.
func (s *Stage[T]) Choose(ctx *Context) (T, bool) {
	scored := s.Policy.Rank(ctx, s.Expand(ctx, 0))
	pick, ok := s.Policy.Choose(ctx, scored)
	return pick.Candidate, ok
}

// Apply commits cand to ctx.
func (s *Stage[T]) Apply(ctx *Context, cand T) { s.apply(ctx, cand) }

// Successors expands ctx, ranks with the policy, keeps at most topK and
// returns one cloned context per kept candidate.
func (s *Stage[T]) Successors(ctx *Context, topK int) []Successor {
	scored := s.Policy.Rank(ctx, s.Expand(ctx, topK))
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}

	out := make([]Successor, 0, len(scored))
	for _, sc := range scored {
		child := ctx.Clone()
		s.apply(child, sc.Candidate)
		out = append(out, Successor{Context: child, Score: sc.Score})
	}
	return out
}
