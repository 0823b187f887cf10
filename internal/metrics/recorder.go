package metrics

import (
	"context"
	"time"
)

// GenerationSample describes one finished generation request
type GenerationSample struct {
	Preset   string
	Success  bool
	Cached   bool
	Attempts int
	Fallback bool
	Duration time.Duration
	// Rejections counts audit violations by code on the returned progression
	Rejections map[string]int
}

// Recorder is implemented by every metrics backend
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	RecordGeneration(ctx context.Context, sample GenerationSample)
}

// Multi fans out to several recorders; nil entries are skipped
type Multi []Recorder

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		if r != nil {
			r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
		}
	}
}

func (m Multi) RecordGeneration(ctx context.Context, sample GenerationSample) {
	for _, r := range m {
		if r != nil {
			r.RecordGeneration(ctx, sample)
		}
	}
}

func presetLabel(preset string) string {
	if preset == "" {
		return "custom"
	}
	return preset
}
