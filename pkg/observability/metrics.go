package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes operational counters to CloudWatch. A nil client makes
// every method a no-op, which is how local development runs.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordCatalogRefresh records the outcome of an aggregator catalog refresh.
func (m *Metrics) RecordCatalogRefresh(ctx context.Context, itemCount int, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("CatalogRefresh"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("CatalogSize"),
			Value:      aws.Float64(float64(itemCount)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	})
}

// RecordUpstreamCall records latency and outcome for one third-party call.
func (m *Metrics) RecordUpstreamCall(ctx context.Context, service string, duration time.Duration, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("UpstreamCall"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Service"), Value: aws.String(service)},
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(float64(duration.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// RecordScanPage records one transaction-history page scan and how many
// enriched transactions it produced.
func (m *Metrics) RecordScanPage(ctx context.Context, kept int, err error) {
	if m == nil || m.client == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("TransactionScanPage"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Status"), Value: aws.String(status)},
			},
			Value:     aws.Float64(float64(kept)),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	// Metric delivery is best effort; a failed put never affects the request.
	m.client.PutMetricData(ctx, input)
}
