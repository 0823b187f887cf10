package composer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmony-api/internal/engine"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

func seeded(length int, seed int64) Options {
	opts := DefaultOptions(length)
	opts.Seed = &seed
	return opts
}

func TestBuildStages(t *testing.T) {
	names := func(steps []engine.Step) []string {
		out := make([]string, len(steps))
		for i, s := range steps {
			out[i] = s.Name()
		}
		return out
	}

	tests := []struct {
		name       string
		length     int
		perStepKey bool
		want       []string
	}{
		{"empty", 0, false, []string{}},
		{"shared key", 2, false, []string{KeyStageName, ModeStageName, ChordStageName, ModeStageName, ChordStageName}},
		{"key per step", 2, true, []string{KeyStageName, ModeStageName, ChordStageName, KeyStageName, ModeStageName, ChordStageName}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(BuildStages(tt.length, tt.perStepKey, StageFactories{})))
		})
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"beam width", func(o *Options) { o.BeamWidth = 0 }},
		{"stage budget", func(o *Options) { o.StageBudget = -1 }},
		{"max attempts", func(o *Options) { o.MaxAttempts = 0 }},
		{"budget growth", func(o *Options) { o.BudgetGrowth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := seeded(3, 0)
			tt.modify(&opts)
			_, err := Generate(context.Background(), opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestGenerateEmptyLength(t *testing.T) {
	opts := seeded(0, 0)
	opts.BeamWidth = 0
	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, res.Progression)
}

func TestGenerateDeterministic(t *testing.T) {
	opts := seeded(5, 0)
	opts.BeamWidth = 8
	opts.StageBudget = 50

	first, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, first.Progression, 5)

	second, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, first.Progression, second.Progression)

	for _, step := range first.Progression {
		_, err := step.Resolve()
		assert.NoError(t, err, step.String())
		assert.Equal(t, relations.KeyID{Tonic: theory.C, Main: theory.Ionian}, step.Key)
	}

	start := first.Progression[0]
	assert.Equal(t, theory.Base, start.Chord.Variant)
	for i := 1; i < len(first.Progression); i++ {
		assert.NotEqual(t, first.Progression[i-1].AbsoluteRoot(), first.Progression[i].AbsoluteRoot())
	}
}

func TestGenerateCadence(t *testing.T) {
	opts := seeded(3, 0)
	opts.Cadence = goals.DefaultCadence()

	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, res.Progression, 3)

	roots := make([]theory.Degree, 3)
	for i, step := range res.Progression {
		roots[i] = step.AbsoluteRoot()
	}
	assert.True(t, theory.NewDegreeSet(theory.II, theory.IV).Has(roots[0]), "subdominant root, got %s", roots[0])
	assert.Equal(t, theory.V, roots[1])
	assert.Equal(t, theory.I, roots[2])
}

func TestGenerateKeyCandidates(t *testing.T) {
	key := relations.KeyID{Tonic: theory.D, Main: theory.Dorian}
	opts := seeded(3, 7)
	opts.KeyCandidates = []relations.KeyID{key}

	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	for _, step := range res.Progression {
		assert.Equal(t, key, step.Key)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, seeded(4, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBudgetGrowth(t *testing.T) {
	opts := DefaultOptions(4)
	assert.Equal(t, 50, opts.budget(0))
	assert.Equal(t, 200, opts.budget(2))

	opts.BudgetGrowth = 1 << 20
	assert.Equal(t, 1<<31-1, opts.budget(5))
}

func TestCadenceGateAudited(t *testing.T) {
	opts := seeded(3, 0)
	opts.Cadence = goals.DefaultCadence()
	res, err := Generate(context.Background(), opts)
	require.NoError(t, err)

	for _, e := range res.Audit.Entries() {
		if e.Code == "dp_gate" {
			assert.Equal(t, "CadenceReachabilityGate", e.Constraint)
			assert.Equal(t, ChordStageName, e.Stage)
		}
	}
}
