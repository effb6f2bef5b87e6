package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"growthos/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the OpenTelemetry providers and the custom metrics
type Manager struct {
	settings       Settings
	fullConfig     *config.Config
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	metricsHandler http.Handler
	shutdownFuncs  []func(context.Context) error
}

// NewManager creates the observability manager. A disabled manager is a cheap no-op.
func NewManager(settings Settings, fullConfig *config.Config) (*Manager, error) {
	m := &Manager{settings: settings, fullConfig: fullConfig}
	if !settings.Enabled {
		m.metrics = &Metrics{}
		return m, nil
	}

	if err := m.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return m, nil
}

func (m *Manager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(m.settings.ServiceName),
			semconv.ServiceVersion(m.settings.ServiceVersion),
			attribute.String("service.instance.id", m.serviceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	m.resource = res
	return nil
}

func (m *Manager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case m.settings.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if m.settings.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case m.otlpEnabled():
		exporter, err = m.createOTLPTraceExporter()
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(m.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(m.settings.SampleRate))),
	}
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)
	return nil
}

func (m *Manager) initMetrics() error {
	var readers []sdkmetric.Reader

	if m.settings.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.collectionInterval())))
	}

	if m.otlpEnabled() {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	promReader, promHandler, err := SetupPrometheusExporter(m.settings.Prometheus)
	if err != nil {
		return err
	}
	if promReader != nil {
		readers = append(readers, promReader)
		m.metricsHandler = promHandler
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(m.resource)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(m.settings.ServiceName), m.customMetrics())
	if err != nil {
		return err
	}
	m.metrics = metrics
	return nil
}

// Metrics returns the custom metrics. It never returns nil.
func (m *Manager) Metrics() *Metrics {
	if m == nil || m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// MetricsHandler returns the Prometheus scrape handler, or nil when Prometheus is off
func (m *Manager) MetricsHandler() http.Handler {
	if m == nil {
		return nil
	}
	return m.metricsHandler
}

// MetricsEndpoint returns the configured scrape path
func (m *Manager) MetricsEndpoint() string {
	if m == nil || m.settings.Prometheus.Endpoint == "" {
		return "/metrics"
	}
	return m.settings.Prometheus.Endpoint
}

// HTTPMiddleware returns otelhttp instrumentation, or a passthrough when disabled
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if m == nil || !m.settings.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		m.settings.ServiceName,
		otelhttp.WithTracerProvider(m.tracerProvider),
		otelhttp.WithMeterProvider(m.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if m == nil || !m.settings.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every provider, returning all errors joined
func (m *Manager) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (m *Manager) otlpEnabled() bool {
	return m.fullConfig != nil && m.fullConfig.Observability.OTLP.Enabled
}

func (m *Manager) customMetrics() config.CustomMetricsConfig {
	if m.fullConfig == nil {
		return config.CustomMetricsConfig{
			AIOperations:    config.AIOperationsMetricsConfig{Enabled: true, TrackDuration: true, TrackTokenUsage: true},
			BusinessMetrics: config.BusinessMetricsConfig{Enabled: true, TrackSuccessRates: true, TrackContentSizes: true},
			Infrastructure:  config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true},
		}
	}
	return m.fullConfig.Observability.CustomMetrics
}

func (m *Manager) createOTLPTraceExporter() (trace.SpanExporter, error) {
	otlp := m.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlp := m.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(m.collectionInterval())), nil
}

func (m *Manager) serviceInstanceID() string {
	if m.settings.ServiceInstance != "" {
		return m.settings.ServiceInstance
	}
	return m.settings.ServiceName + "-1"
}

func (m *Manager) collectionInterval() time.Duration {
	if m.fullConfig != nil && m.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return m.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
