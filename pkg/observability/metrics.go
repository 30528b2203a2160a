// Package observability publishes store operation metrics to CloudWatch.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the slice of the CloudWatch client the recorder uses.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics records per-operation latency and error counts. Publishing is
// best-effort; a failed PutMetricData is logged and never propagated to the
// request path.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
}

// NewMetrics creates a CloudWatch metrics recorder.
func NewMetrics(client CloudWatchAPI, namespace string, logger *zap.Logger) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordOperation publishes latency and outcome for one store operation.
// The CloudWatch call happens on a background goroutine so the request path
// never waits on a metrics round-trip.
func (m *Metrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, opErr error) {
	dims := []types.Dimension{{
		Name:  aws.String("Operation"),
		Value: aws.String(operation),
	}}

	data := []types.MetricDatum{
		{
			MetricName: aws.String("OperationLatency"),
			Dimensions: dims,
			Unit:       types.StandardUnitMilliseconds,
			Value:      aws.Float64(float64(duration.Milliseconds())),
		},
		{
			MetricName: aws.String("OperationCount"),
			Dimensions: dims,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
		},
	}
	if opErr != nil {
		data = append(data, types.MetricDatum{
			MetricName: aws.String("OperationErrors"),
			Dimensions: dims,
			Unit:       types.StandardUnitCount,
			Value:      aws.Float64(1),
		})
	}

	// The request context is often already done by the time the deferred
	// record fires, so the publish gets its own deadline.
	go m.publish(operation, data)
}

func (m *Metrics) publish(operation string, data []types.MetricDatum) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}); err != nil {
		m.logger.Warn("Failed to publish metrics",
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}
