package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmony-api/internal/metrics"
	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
	"github.com/Conceptual-Machines/harmony-api/internal/store"
)

type fakeRecorder struct {
	mu      sync.Mutex
	samples []metrics.GenerationSample
}

func (f *fakeRecorder) RecordAPIRequest(context.Context, string, int, time.Duration) {}

func (f *fakeRecorder) RecordGeneration(_ context.Context, s metrics.GenerationSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, s)
}

type fakeRunLog struct {
	mu   sync.Mutex
	runs []*store.GenerationRun
}

func (f *fakeRunLog) SaveRun(_ context.Context, run *store.GenerationRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRunLog) Stats(context.Context, time.Time) ([]store.PresetStats, error) {
	return []store.PresetStats{{Preset: "p", Runs: int64(len(f.runs))}}, nil
}

func testConfig() GenerationConfig {
	return GenerationConfig{
		BeamWidth:    5,
		StageBudget:  50,
		MaxAttempts:  6,
		BudgetGrowth: 2,
		MaxLength:    12,
		Timeout:      30 * time.Second,
		CacheSize:    16,

		BeamWidthLimit:    16,
		StageBudgetLimit:  200,
		MaxAttemptsLimit:  8,
		BudgetGrowthLimit: 3,
	}
}

func newTestService(t *testing.T) (*GenerationService, *fakeRecorder, *fakeRunLog) {
	t.Helper()
	catalog, err := presets.Default()
	require.NoError(t, err)
	rec, runs := &fakeRecorder{}, &fakeRunLog{}
	svc, err := NewGenerationService(testConfig(), GenerationDeps{Presets: catalog, Metrics: rec, Runs: runs})
	require.NoError(t, err)
	return svc, rec, runs
}

func seed(v int64) *int64 { return &v }

func TestGenerateSeededIsCached(t *testing.T) {
	svc, rec, runs := newTestService(t)
	req := models.GenerationRequest{Length: 4, Seed: seed(7)}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Steps, 4)
	assert.False(t, first.Cached)
	assert.Equal(t, int64(7), first.Seed)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.RunID, second.RunID)

	require.Len(t, rec.samples, 2)
	assert.True(t, rec.samples[1].Cached)
	require.Len(t, runs.runs, 1)
	assert.Equal(t, first.RunID, runs.runs[0].RunID)
	assert.True(t, runs.runs[0].Success)
}

func TestGenerateRendersSteps(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, err := svc.Generate(context.Background(), models.GenerationRequest{
		Length: 3,
		Seed:   seed(0),
		Keys:   []models.KeySpec{{Tonic: "D", Main: "Dorian"}},
		Spread: "medium",
	})
	require.NoError(t, err)

	for i, step := range resp.Steps {
		assert.Equal(t, i, step.Index)
		assert.Equal(t, "D-Dorian", step.Key)
		assert.NotEmpty(t, step.ChordName)
		assert.NotEmpty(t, step.Notes)
		require.NotEmpty(t, step.MIDI)
		assert.Less(t, step.MIDI[0], 60, "medium spread doubles the root below")
	}
}

func TestGenerateWithPreset(t *testing.T) {
	svc, _, _ := newTestService(t)
	resp, err := svc.Generate(context.Background(), models.GenerationRequest{
		Preset:       "classic_cadence",
		Seed:         seed(1),
		IncludeAudit: true,
	})
	require.NoError(t, err)

	require.Len(t, resp.Steps, 4)
	assert.Equal(t, "classic_cadence", resp.Preset)
	for _, step := range resp.Steps {
		assert.Equal(t, "C-Ionian", step.Key)
		assert.Equal(t, "Base", step.Variant)
		assert.NotEqual(t, "SubV", step.Access)
	}
	last := resp.Steps[len(resp.Steps)-1]
	assert.Equal(t, "I", last.AbsoluteRoot)
	assert.NotNil(t, resp.Audit)
}

func TestGenerateUnseededRunsEveryTime(t *testing.T) {
	svc, _, runs := newTestService(t)
	req := models.GenerationRequest{Length: 2}

	a, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.False(t, b.Cached)
	assert.Len(t, runs.runs, 2)
}

func TestGenerateInvalid(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name    string
		req     models.GenerationRequest
		wantErr error
	}{
		{"missing length", models.GenerationRequest{}, ErrInvalidRequest},
		{"too long", models.GenerationRequest{Length: 13}, ErrInvalidRequest},
		{"unknown scorer", models.GenerationRequest{Length: 2, Scorers: []string{"vibes"}}, ErrInvalidRequest},
		{"unknown spread", models.GenerationRequest{Length: 2, Spread: "huge"}, ErrInvalidRequest},
		{"sharp key", models.GenerationRequest{Length: 2, Keys: []models.KeySpec{{Tonic: "F#", Main: "Ionian"}}}, ErrInvalidRequest},
		{"negative beam", models.GenerationRequest{Length: 2, BeamWidth: -1}, ErrInvalidRequest},
		{"unknown preset", models.GenerationRequest{Preset: "nope"}, presets.ErrNotFound},
		{"octave too high", models.GenerationRequest{Length: 4, Octave: 20}, ErrInvalidRequest},
		{"negative octave", models.GenerationRequest{Length: 4, Octave: -1}, ErrInvalidRequest},
		{"octave too high over preset", models.GenerationRequest{Preset: "classic_cadence", Octave: 9}, ErrInvalidRequest},
		{"beam width over limit", models.GenerationRequest{Length: 2, BeamWidth: 1000000}, ErrInvalidRequest},
		{"stage budget over limit", models.GenerationRequest{Length: 2, StageBudget: 201}, ErrInvalidRequest},
		{"attempts over limit", models.GenerationRequest{Length: 2, MaxAttempts: 9}, ErrInvalidRequest},
		{"budget growth over limit", models.GenerationRequest{Length: 2, BudgetGrowth: 4}, ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateRejectsBeforeSearching(t *testing.T) {
	svc, rec, runs := newTestService(t)

	_, err := svc.Generate(context.Background(), models.GenerationRequest{Length: 4, Seed: seed(3), Octave: 20})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, rec.samples)
	assert.Empty(t, runs.runs)
}

func TestGenerateAtLimits(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.Generate(context.Background(), models.GenerationRequest{
		Length:       2,
		Seed:         seed(5),
		BeamWidth:    16,
		StageBudget:  200,
		MaxAttempts:  8,
		BudgetGrowth: 3,
		Octave:       8,
	})
	require.NoError(t, err)
	require.Len(t, resp.Steps, 2)
	for _, step := range resp.Steps {
		assert.NotEmpty(t, step.MIDI)
	}
}

func TestGenerateSeededSurvivesCancelledCaller(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := models.GenerationRequest{Length: 3, Seed: seed(21)}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	var (
		wg        sync.WaitGroup
		liveResp  *models.GenerationResponse
		liveErr   error
		cancelErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.Generate(cancelled, req)
	}()
	go func() {
		defer wg.Done()
		liveResp, liveErr = svc.Generate(context.Background(), req)
	}()
	wg.Wait()

	require.NoError(t, liveErr)
	require.Len(t, liveResp.Steps, 3)
	if cancelErr != nil {
		assert.ErrorIs(t, cancelErr, context.Canceled)
	}

	// The shared search finished and was cached even if its leader left
	again, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, liveResp.Steps, again.Steps)
}

func TestGenerateCancelled(t *testing.T) {
	svc, rec, runs := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, models.GenerationRequest{Length: 3})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, rec.samples, 1)
	assert.False(t, rec.samples[0].Success)
	require.Len(t, runs.runs, 1)
	assert.NotEmpty(t, runs.runs[0].ErrorMessage)
}

func TestGenerateConcurrentSeeded(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := models.GenerationRequest{Length: 3, Seed: seed(11)}

	var wg sync.WaitGroup
	results := make([]*models.GenerationResponse, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.Generate(context.Background(), req)
			assert.NoError(t, err)
			results[i] = resp
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		require.NotNil(t, r)
		assert.Equal(t, results[0].Steps, r.Steps)
	}
}

func TestPresetsAndStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	list := svc.Presets()
	require.Len(t, list, 5)
	assert.Equal(t, "classic_cadence", list[0].Name)
	assert.True(t, list[0].Cadence)

	stats, err := svc.RunStats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}
