package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Conceptual-Machines/harmony-api/internal/composer"
	"github.com/Conceptual-Machines/harmony-api/internal/config"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/logger"
	"github.com/Conceptual-Machines/harmony-api/internal/metrics"
	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/scoring"
	"github.com/Conceptual-Machines/harmony-api/internal/store"
	"github.com/Conceptual-Machines/harmony-api/internal/voicing"
	"github.com/Conceptual-Machines/harmony-api/pkg/embedded"
)

var ErrInvalidRequest = errors.New("invalid generation request")

// GenerationConfig holds server-side defaults and limits. A zero limit is
// unbounded.
type GenerationConfig struct {
	BeamWidth    int
	StageBudget  int
	MaxAttempts  int
	BudgetGrowth int
	MaxLength    int
	Timeout      time.Duration
	CacheSize    int

	BeamWidthLimit    int
	StageBudgetLimit  int
	MaxAttemptsLimit  int
	BudgetGrowthLimit int
}

// GenerationConfigFrom copies the generation settings out of the app config
func GenerationConfigFrom(cfg *config.Config) GenerationConfig {
	return GenerationConfig{
		BeamWidth:    cfg.BeamWidth,
		StageBudget:  cfg.StageBudget,
		MaxAttempts:  cfg.MaxAttempts,
		BudgetGrowth: cfg.BudgetGrowth,
		MaxLength:    cfg.MaxLength,
		Timeout:      cfg.RequestTimeout,
		CacheSize:    cfg.ResultCacheSize,

		BeamWidthLimit:    cfg.BeamWidthLimit,
		StageBudgetLimit:  cfg.StageBudgetLimit,
		MaxAttemptsLimit:  cfg.MaxAttemptsLimit,
		BudgetGrowthLimit: cfg.BudgetGrowthLimit,
	}
}

// RunLog persists run statistics
type RunLog interface {
	SaveRun(ctx context.Context, run *store.GenerationRun) error
	Stats(ctx context.Context, since time.Time) ([]store.PresetStats, error)
}

// GenerationDeps are the collaborators of GenerationService. Only Presets is
// required.
type GenerationDeps struct {
	Presets *presets.Catalog
	Model   *scoring.LinearModel
	Metrics metrics.Recorder
	Runs    RunLog
}

type GenerationService struct {
	cfg     GenerationConfig
	presets *presets.Catalog
	model   *scoring.LinearModel
	metrics metrics.Recorder
	runs    RunLog
	cache   *lru.Cache[string, *models.GenerationResponse]
	group   singleflight.Group
}

func NewGenerationService(cfg GenerationConfig, deps GenerationDeps) (*GenerationService, error) {
	if deps.Presets == nil {
		return nil, errors.New("generation service needs a preset catalog")
	}
	s := &GenerationService{
		cfg:     cfg,
		presets: deps.Presets,
		model:   deps.Model,
		metrics: deps.Metrics,
		runs:    deps.Runs,
	}
	if s.metrics == nil {
		s.metrics = metrics.Multi{}
	}
	if s.model == nil {
		m, err := scoring.LoadLinearModel(bytes.NewReader(embedded.WindowModelYAML))
		if err != nil {
			return nil, fmt.Errorf("failed to load window model: %w", err)
		}
		s.model = m
	}
	if cfg.CacheSize > 0 {
		c, err := lru.New[string, *models.GenerationResponse](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request id so it lands in the run log
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// plan is a fully resolved request
type plan struct {
	preset  string
	opts    composer.Options
	voicing voicing.Options
	audit   bool
}

// Presets lists the available presets
func (s *GenerationService) Presets() []models.PresetSummary {
	list := s.presets.List()
	out := make([]models.PresetSummary, len(list))
	for i, p := range list {
		out[i] = models.PresetSummary{Name: p.Name, Description: p.Description, Length: p.Length, Cadence: p.Cadence}
	}
	return out
}

// RunStats aggregates the run log. It returns nil without a store.
func (s *GenerationService) RunStats(ctx context.Context, since time.Time) ([]store.PresetStats, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.Stats(ctx, since)
}

// plan resolves a request against presets and server defaults without
// running it.
func (s *GenerationService) plan(req models.GenerationRequest) (*plan, error) {
	opts := composer.DefaultOptions(0)
	setInt(&opts.BeamWidth, s.cfg.BeamWidth)
	setInt(&opts.StageBudget, s.cfg.StageBudget)
	setInt(&opts.MaxAttempts, s.cfg.MaxAttempts)
	setInt(&opts.BudgetGrowth, s.cfg.BudgetGrowth)

	p := &plan{preset: req.Preset, voicing: voicing.DefaultOptions(), audit: req.IncludeAudit}
	var scorerNames []string

	if req.Preset != "" {
		preset, err := s.presets.Get(req.Preset)
		if err != nil {
			return nil, err
		}
		if err := preset.Apply(&opts); err != nil {
			return nil, err
		}
		scorerNames = preset.Scorers
		if p.voicing, err = preset.Voicing.Options(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	setInt(&opts.Length, req.Length)
	setInt(&opts.BeamWidth, req.BeamWidth)
	setInt(&opts.StageBudget, req.StageBudget)
	setInt(&opts.MaxAttempts, req.MaxAttempts)
	setInt(&opts.BudgetGrowth, req.BudgetGrowth)
	opts.Seed = req.Seed
	opts.PerStepKey = opts.PerStepKey || req.PerStepKey
	opts.IncludeSubV = opts.IncludeSubV || req.IncludeSubV
	opts.FallbackFullScan = !req.NoFallback
	if req.Cadence {
		opts.Cadence = goals.DefaultCadence()
	}
	if opts.ModeDomain != nil {
		opts.ModeDomain.IncludeSubV = opts.IncludeSubV
	}

	if len(req.Keys) > 0 {
		keys := make([]relations.KeyID, 0, len(req.Keys))
		for _, k := range req.Keys {
			id, err := parseKey(k)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
			keys = append(keys, id)
		}
		opts.KeyCandidates = keys
	}
	if len(req.Scorers) > 0 {
		scorerNames = req.Scorers
	}
	scorers, err := scoring.Build(scorerNames, s.model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	opts.ChordScorers = scorers

	if req.Spread != "" {
		p.voicing.Spread = voicing.Spread(req.Spread)
	}
	if req.Octave != 0 {
		p.voicing.Octave = req.Octave
	}
	if err := p.voicing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if p.voicing.Spread, err = voicing.ParseSpread(string(p.voicing.Spread)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if opts.Length <= 0 {
		return nil, fmt.Errorf("%w: length must be > 0", ErrInvalidRequest)
	}
	if err := s.checkLimits(opts); err != nil {
		return nil, err
	}
	p.opts = opts
	return p, nil
}

// checkLimits bounds the resolved search size, whether it came from the
// request or a preset
func (s *GenerationService) checkLimits(opts composer.Options) error {
	limits := []struct {
		name  string
		value int
		limit int
	}{
		{"length", opts.Length, s.cfg.MaxLength},
		{"beam_width", opts.BeamWidth, s.cfg.BeamWidthLimit},
		{"stage_budget", opts.StageBudget, s.cfg.StageBudgetLimit},
		{"max_attempts", opts.MaxAttempts, s.cfg.MaxAttemptsLimit},
		{"budget_growth", opts.BudgetGrowth, s.cfg.BudgetGrowthLimit},
	}
	for _, l := range limits {
		if l.limit > 0 && l.value > l.limit {
			return fmt.Errorf("%w: %s %d exceeds the limit of %d", ErrInvalidRequest, l.name, l.value, l.limit)
		}
	}
	return nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// Generate runs a search for req. Seeded requests are cached and identical
// concurrent seeded requests share one search.
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	p, err := s.plan(req)
	if err != nil {
		return nil, err
	}
	if req.Seed == nil {
		return s.run(ctx, p)
	}

	key, err := cacheKey(req)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			resp := *hit
			resp.Cached = true
			s.metrics.RecordGeneration(ctx, metrics.GenerationSample{Preset: p.preset, Success: true, Cached: true})
			return &resp, nil
		}
	}

	// Callers share one search, so no single caller's cancellation may end
	// it. run still applies the service timeout, and each caller stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		resp, err := s.run(shared, p)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Add(key, resp)
		}
		return resp, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*models.GenerationResponse), nil
	}
}

// cacheKey is the canonical JSON of the request
func cacheKey(req models.GenerationRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *GenerationService) run(ctx context.Context, p *plan) (*models.GenerationResponse, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	start := time.Now()
	res, err := composer.Generate(ctx, p.opts)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, composer.ErrInvalidOptions) {
			err = fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		s.record(ctx, runID, p, nil, duration, err)
		return nil, err
	}

	steps, err := renderSteps(res.Progression, p.voicing)
	if err != nil {
		s.record(ctx, runID, p, res, duration, err)
		return nil, err
	}
	resp := &models.GenerationResponse{
		RunID:      runID,
		Preset:     p.preset,
		Seed:       res.Seed,
		Attempts:   res.Attempts,
		Budget:     res.Budget,
		Fallback:   res.Fallback,
		DurationMS: duration.Milliseconds(),
		Steps:      steps,
		Rejections: res.Audit.ViolationCounts(),
	}
	if p.audit {
		resp.Audit = res.Audit.Entries()
	}
	s.record(ctx, runID, p, res, duration, nil)
	return resp, nil
}

// record reports a finished run to metrics, logs and the run log
func (s *GenerationService) record(ctx context.Context, runID string, p *plan, res *composer.Result, duration time.Duration, runErr error) {
	sample := metrics.GenerationSample{Preset: p.preset, Success: runErr == nil, Duration: duration}
	row := &store.GenerationRun{
		RunID:       runID,
		RequestID:   requestID(ctx),
		Preset:      p.preset,
		Length:      p.opts.Length,
		BeamWidth:   p.opts.BeamWidth,
		StageBudget: p.opts.StageBudget,
		Cadence:     p.opts.Cadence != nil,
		Success:     runErr == nil,
		DurationMS:  duration.Milliseconds(),
	}
	if p.opts.Seed != nil {
		row.Seed = *p.opts.Seed
	}
	if res != nil {
		counts := res.Audit.ViolationCounts()
		sample.Attempts, sample.Fallback, sample.Rejections = res.Attempts, res.Fallback, counts
		row.Seed, row.Attempts, row.Budget, row.Fallback = res.Seed, res.Attempts, res.Budget, res.Fallback
		for _, n := range counts {
			row.Rejections += n
		}
	}
	if runErr != nil {
		row.ErrorMessage = runErr.Error()
		logger.Warn("Generation failed", logger.Fields{"run_id": runID, "preset": p.preset, "error": runErr.Error()})
	} else {
		logger.LogGenerationRun(ctx, logger.GenerationRun{
			Preset:     p.preset,
			Length:     p.opts.Length,
			Seed:       row.Seed,
			Attempts:   row.Attempts,
			Budget:     row.Budget,
			Fallback:   row.Fallback,
			Rejections: row.Rejections,
			Duration:   duration,
		}, logger.Fields{"run_id": runID})
	}

	s.metrics.RecordGeneration(ctx, sample)
	if s.runs != nil {
		// The request may already be cancelled; the row should still land.
		if err := s.runs.SaveRun(context.WithoutCancel(ctx), row); err != nil {
			logger.Error("Failed to save generation run", err, logger.Fields{"run_id": runID})
		}
	}
}

func renderSteps(progression []relations.Triple, opts voicing.Options) ([]models.Step, error) {
	steps := make([]models.Step, len(progression))
	for i, t := range progression {
		r, err := t.Resolve()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		midi, err := voicing.ChordToMIDI(r.Chord, opts)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = models.Step{
			Index:        i,
			Key:          t.Key.String(),
			Mode:         t.Mode.String(),
			Chord:        t.Chord.String(),
			Access:       t.Mode.Access.String(),
			Role:         t.Mode.Role(),
			Degree:       t.Chord.Degree.String(),
			Variant:      t.Chord.Variant.String(),
			Composition:  degreeNames(t.Chord.EffectiveComposition()),
			AbsoluteRoot: t.AbsoluteRoot().String(),
			ModeName:     r.Mode.String(),
			ChordName:    r.Chord.Name(),
			Notes:        noteNames(r.Chord.Notes()),
			MIDI:         midi,
		}
	}
	return steps, nil
}
