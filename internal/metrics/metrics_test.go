package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, p *Prometheus) string {
	t.Helper()
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusGeneration(t *testing.T) {
	tests := []struct {
		name   string
		sample GenerationSample
		want   []string
	}{
		{
			name:   "success",
			sample: GenerationSample{Preset: "classic_cadence", Success: true, Attempts: 2, Rejections: map[string]int{"resolution": 3}},
			want: []string{
				`harmony_generation_runs_total{outcome="ok",preset="classic_cadence"} 1`,
				`harmony_generation_rejections_total{code="resolution"} 3`,
				`harmony_generation_attempts_count{preset="classic_cadence"} 1`,
			},
		},
		{
			name:   "failure without preset",
			sample: GenerationSample{},
			want:   []string{`harmony_generation_runs_total{outcome="failed",preset="custom"} 1`},
		},
		{
			name:   "fallback",
			sample: GenerationSample{Preset: "p", Success: true, Fallback: true},
			want:   []string{`harmony_generation_runs_total{outcome="fallback",preset="p"} 1`},
		},
		{
			name:   "cached skips histograms",
			sample: GenerationSample{Preset: "p", Success: true, Cached: true},
			want:   []string{`harmony_generation_runs_total{outcome="cached",preset="p"} 1`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrometheus()
			p.RecordGeneration(context.Background(), tt.sample)
			body := scrape(t, p)
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
		})
	}
}

func TestPrometheusAPIRequest(t *testing.T) {
	p := NewPrometheus()
	p.RecordAPIRequest(context.Background(), "/api/v1/generate", 200, 10*time.Millisecond)
	p.RecordAPIRequest(context.Background(), "/api/v1/generate", 200, 10*time.Millisecond)
	assert.Contains(t, scrape(t, p), `harmony_http_requests_total{endpoint="/api/v1/generate",status="200"} 2`)
}

type countingRecorder struct{ api, gen int }

func (c *countingRecorder) RecordAPIRequest(context.Context, string, int, time.Duration) { c.api++ }
func (c *countingRecorder) RecordGeneration(context.Context, GenerationSample) { c.gen++ }

func TestMulti(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	m := Multi{a, nil, b}
	m.RecordAPIRequest(context.Background(), "/x", 200, 0)
	m.RecordGeneration(context.Background(), GenerationSample{})
	assert.Equal(t, 1, a.api)
	assert.Equal(t, 1, b.gen)
}

type fakeCloudWatch struct{ inputs []*cloudwatch.PutMetricDataInput }

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestCloudWatchPut(t *testing.T) {
	fake := &fakeCloudWatch{}
	cw := &CloudWatch{client: fake, enabled: true, namespace: "Harmony/Test", environment: "test"}

	err := cw.put([]types.MetricDatum{datum("GenerationAttempts", 2, types.StandardUnitCount, cw.dimensions("Preset", "p"))})
	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "Harmony/Test", aws.ToString(fake.inputs[0].Namespace))
	require.Len(t, fake.inputs[0].MetricData, 1)
	assert.Equal(t, "GenerationAttempts", aws.ToString(fake.inputs[0].MetricData[0].MetricName))
	assert.Equal(t, "Environment", aws.ToString(fake.inputs[0].MetricData[0].Dimensions[1].Name))
}

func TestDisabledRecordersAreNoops(t *testing.T) {
	cw := NewCloudWatch(context.Background(), false, "Harmony/Test", "test")
	cw.RecordGeneration(context.Background(), GenerationSample{Success: true})
	cw.RecordAPIRequest(context.Background(), "/x", 500, time.Second)
	assert.NoError(t, cw.put(nil))

	s := NewSentryMetrics("")
	s.RecordGeneration(context.Background(), GenerationSample{})
	s.RecordAPIRequest(context.Background(), "/x", 200, 0)
}
