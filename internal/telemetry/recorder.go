package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"invisinsights/internal/config"
)

const (
	serviceName    = "invisinsights"
	serviceVersion = "1.0.0"
)

// Recorder counts survey bridge activity
type Recorder interface {
	SurveyConnected(ctx context.Context, projectID string)
	QuestionsSynthesized(ctx context.Context, projectID string, answered, omitted int)
	ResponseSubmitted(ctx context.Context, projectID string)
	AnalysisFailed(ctx context.Context, projectID, stage string)
	Close(ctx context.Context) error
}

type otelRecorder struct {
	provider          *sdkmetric.MeterProvider
	surveysConnected  metric.Int64Counter
	questionsAnswered metric.Int64Counter
	questionsOmitted  metric.Int64Counter
	responses         metric.Int64Counter
	failures          metric.Int64Counter
}

// New returns an OTLP-backed recorder, or a no-op one when telemetry is disabled
func New(ctx context.Context, cfg config.TelemetryConfig) (Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return Noop(), nil
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	r, err := newCounters(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	r.provider = provider
	return r, nil
}

// Noop returns a recorder whose instruments discard everything
func Noop() Recorder {
	r, _ := newCounters(noop.NewMeterProvider().Meter(serviceName))
	return r
}

func newCounters(meter metric.Meter) (*otelRecorder, error) {
	r := &otelRecorder{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&r.surveysConnected, "invisinsights_surveys_connected_total", "Surveys connected to a project", "{survey}"},
		{&r.questionsAnswered, "invisinsights_questions_answered_total", "Questions answered by synthesis", "{question}"},
		{&r.questionsOmitted, "invisinsights_questions_omitted_total", "Questions omitted for weak or absent signal", "{question}"},
		{&r.responses, "invisinsights_responses_submitted_total", "Survey responses submitted upstream", "{response}"},
		{&r.failures, "invisinsights_analysis_failures_total", "Failed analysis or submission attempts", "{failure}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return r, nil
}

func project(projectID string) metric.AddOption {
	return metric.WithAttributes(attribute.String("project_id", projectID))
}

func (r *otelRecorder) SurveyConnected(ctx context.Context, projectID string) {
	r.surveysConnected.Add(ctx, 1, project(projectID))
}

func (r *otelRecorder) QuestionsSynthesized(ctx context.Context, projectID string, answered, omitted int) {
	r.questionsAnswered.Add(ctx, int64(answered), project(projectID))
	r.questionsOmitted.Add(ctx, int64(omitted), project(projectID))
}

func (r *otelRecorder) ResponseSubmitted(ctx context.Context, projectID string) {
	r.responses.Add(ctx, 1, project(projectID))
}

func (r *otelRecorder) AnalysisFailed(ctx context.Context, projectID, stage string) {
	r.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("project_id", projectID),
		attribute.String("stage", stage),
	))
}

// Close flushes pending metrics
func (r *otelRecorder) Close(ctx context.Context) error {
	if r.provider == nil {
		return nil
	}
	return r.provider.Shutdown(ctx)
}
