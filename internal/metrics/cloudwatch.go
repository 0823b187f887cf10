package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricAPI is the slice of the CloudWatch client used here
type putMetricAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatch publishes custom metrics asynchronously
type CloudWatch struct {
	client      putMetricAPI
	enabled     bool
	namespace   string
	environment string
}

// NewCloudWatch creates a CloudWatch recorder. It stays disabled unless
// enabled is set and AWS config loads.
func NewCloudWatch(ctx context.Context, enabled bool, namespace, environment string) *CloudWatch {
	if !enabled {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &CloudWatch{environment: environment, namespace: namespace}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &CloudWatch{environment: environment, namespace: namespace}
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &CloudWatch{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		namespace:   namespace,
		environment: environment,
	}
}

// RecordAPIRequest records an API request metric
func (m *CloudWatch) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}
	dimensions := m.dimensions("Endpoint", endpoint)

	go m.send(
		datum(metricName, 1, types.StandardUnitCount, dimensions),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
	)
}

// RecordGeneration records search duration, attempts and fallbacks
func (m *CloudWatch) RecordGeneration(_ context.Context, s GenerationSample) {
	if !m.enabled || s.Cached {
		return
	}

	dimensions := m.dimensions("Preset", presetLabel(s.Preset))
	data := []types.MetricDatum{
		datum("GenerationDuration", float64(s.Duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
	}
	if s.Success {
		data = append(data, datum("GenerationAttempts", float64(s.Attempts), types.StandardUnitCount, dimensions))
	} else {
		data = append(data, datum("GenerationFailures", 1, types.StandardUnitCount, dimensions))
	}
	if s.Fallback {
		data = append(data, datum("GenerationFallbacks", 1, types.StandardUnitCount, dimensions))
	}
	go m.send(data...)
}

func (m *CloudWatch) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{Name: aws.String(name), Value: aws.String(value)},
		{Name: aws.String("Environment"), Value: aws.String(m.environment)},
	}
}

func datum(name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	}
}

// send puts all data in one call
func (m *CloudWatch) send(data ...types.MetricDatum) {
	if err := m.put(data); err != nil {
		log.Printf("Failed to record CloudWatch metrics: %v", err)
	}
}

func (m *CloudWatch) put(data []types.MetricDatum) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	return err
}
