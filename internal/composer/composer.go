// Package composer drives staged beam search to produce (key, mode, chord)
// progressions.
package composer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/enumerate"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
)

var (
	ErrInvalidOptions = errors.New("invalid generation options")
	ErrNoSolution     = errors.New("no progression satisfies the rules within the budget")
)

// Options controls one call to Generate.
type Options struct {
	Length       int
	BeamWidth    int
	StageBudget  int
	MaxAttempts  int
	BudgetGrowth int
	// Seed makes the run reproducible. Attempt i uses Seed+i.
	Seed             *int64
	PerStepKey       bool
	FallbackFullScan bool
	Cadence          *goals.CadenceSDT

	KeyCandidates []relations.KeyID
	KeyDomain     *enumerate.KeyDomain
	ModeDomain    *enumerate.ModeDomain
	ChordDomain   *enumerate.ChordDomain
	IncludeSubV   bool
	ChordScorers  []engine.Scorer[relations.ChordID]
}

// DefaultOptions returns the standard search parameters for length steps.
func DefaultOptions(length int) Options {
	return Options{
		Length:           length,
		BeamWidth:        5,
		StageBudget:      50,
		MaxAttempts:      6,
		BudgetGrowth:     2,
		FallbackFullScan: true,
	}
}

func (o Options) validate() error {
	switch {
	case o.BeamWidth <= 0:
		return fmt.Errorf("%w: beam width must be > 0", ErrInvalidOptions)
	case o.StageBudget <= 0:
		return fmt.Errorf("%w: stage budget must be > 0", ErrInvalidOptions)
	case o.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts must be > 0", ErrInvalidOptions)
	case o.BudgetGrowth <= 0:
		return fmt.Errorf("%w: budget growth must be > 0", ErrInvalidOptions)
	}
	return nil
}

// budget is StageBudget * BudgetGrowth^attempt, saturating at MaxInt32.
func (o Options) budget(attempt int) int {
	b := o.StageBudget
	for i := 0; i < attempt; i++ {
		if b > math.MaxInt32/o.BudgetGrowth {
			return math.MaxInt32
		}
		b *= o.BudgetGrowth
	}
	return b
}

// Result is the best progression found and how it was found.
type Result struct {
	Progression []relations.Triple
	// Attempts counts budgeted attempts made, including the successful one.
	Attempts int
	// Budget is the stage budget of the successful attempt, 0 for a full scan.
	Budget   int
	Fallback bool
	Seed     int64
	Audit    *engine.Audit
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Generate searches for a progression of opts.Length steps. Each attempt
// grows the stage budget and shifts the seed; when every attempt fails and
// FallbackFullScan is set, one unbudgeted search runs with the base seed.
// ctx is checked between attempts only.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.Length <= 0 {
		return &Result{Audit: engine.NewAudit()}, nil
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := rand.Int64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	schedule := &goals.Schedule{Length: opts.Length, Cadence: opts.Cadence}
	memo := goals.NewMemo()

	run := func(seed int64, topK int) *engine.Context {
		gctx := engine.NewContext(newRand(seed))
		gctx.Goals = schedule
		gctx.Memo = memo
		beam := engine.NewPipeline(opts.stages()...).Run(gctx, opts.BeamWidth, topK)
		if len(beam) == 0 {
			return nil
		}
		return beam[0]
	}

	for i := 0; i < opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		budget := opts.budget(i)
		if best := run(seed+int64(i), budget); best != nil {
			return &Result{
				Progression: best.Progression,
				Attempts:    i + 1,
				Budget:      budget,
				Seed:        seed,
				Audit:       best.Audit,
			}, nil
		}
	}

	if opts.FallbackFullScan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if best := run(seed, 0); best != nil {
			return &Result{
				Progression: best.Progression,
				Attempts:    opts.MaxAttempts,
				Fallback:    true,
				Seed:        seed,
				Audit:       best.Audit,
			}, nil
		}
	}
	return nil, ErrNoSolution
}

func (o Options) stages() []engine.Step {
	return BuildStages(o.Length, o.PerStepKey, StageFactories{
		Key:   func() engine.Step { return NewKeyStage(o.KeyCandidates, o.KeyDomain) },
		Mode:  func() engine.Step { return NewModeStage(o.ModeDomain, o.IncludeSubV) },
		Chord: func() engine.Step { return NewChordStage(o.ChordDomain, o.ChordScorers) },
	})
}
