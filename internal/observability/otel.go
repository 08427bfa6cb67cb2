package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"essaylens/internal/config"
	"essaylens/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for essaylens
type Metrics struct {
	// Backend call metrics
	BackendDuration     metric.Float64Histogram
	BackendRequestCount metric.Int64Counter
	BackendErrorCount   metric.Int64Counter

	// Business metrics
	ReportsRendered metric.Int64Counter
	ReportSize      metric.Int64Histogram
	ExportsTotal    metric.Int64Counter
	ExportDuration  metric.Float64Histogram
	ExportSize      metric.Int64Histogram

	// Infrastructure metrics
	RateLimitHits       metric.Int64Counter
	CircuitStateChanges metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config // Store full config for access to nested settings
	logger           *errors.Logger
	resource         *resource.Resource
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	extraReaders     []sdkmetric.Reader
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.Server
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config, logger *errors.Logger) (*ObservabilityManager, error) {
	return newObservabilityManager(obsConfig, fullConfig, logger)
}

func newObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config, logger *errors.Logger, extraReaders ...sdkmetric.Reader) (*ObservabilityManager, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig, logger: logger}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		logger:        logger,
		extraReaders:  extraReaders,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// initResource creates the OpenTelemetry resource shared by traces and metrics
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	if om.fullConfig != nil && !om.fullConfig.Observability.Tracing.Enabled {
		return nil
	}

	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development. Traces go to stderr; stdout carries rendered output.
		opts := []stdouttrace.Option{stdouttrace.WithWriter(consoleWriter())}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		exporter, err = om.createOTLPExporter()
	} else {
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.TraceIDRatioBased(om.getSampleRate())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	if om.fullConfig != nil && !om.fullConfig.Observability.Metrics.Enabled {
		return nil
	}

	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(om.resource),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	readers := append([]sdkmetric.Reader{}, om.extraReaders...)

	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(consoleWriter()))
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	if otlpReader != nil {
		*readers = append(*readers, otlpReader)
	}
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader != nil {
		*readers = append(*readers, prometheusReader)

		srv, err := StartPrometheusServer(prometheusMux, om.config.Prometheus, om.logger)
		if err != nil {
			return fmt.Errorf("failed to start Prometheus server: %w", err)
		}
		om.prometheusServer = srv
		if srv != nil {
			om.shutdownFuncs = append(om.shutdownFuncs, srv.Shutdown)
		}
	}
	return nil
}

// initCustomMetrics creates all custom metrics for essaylens
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createBackendMetrics(meter); err != nil {
		return err
	}

	if err := om.createBusinessMetrics(meter); err != nil {
		return err
	}

	if err := om.createInfrastructureMetrics(meter); err != nil {
		return err
	}

	return nil
}

// createBackendMetrics creates analysis-service call metrics
func (om *ObservabilityManager) createBackendMetrics(meter metric.Meter) error {
	var err error

	om.metrics.BackendDuration, err = meter.Float64Histogram(
		"essaylens_backend_request_duration_seconds",
		metric.WithDescription("Time spent waiting for the analysis service"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend duration metric: %w", err)
	}

	om.metrics.BackendRequestCount, err = meter.Int64Counter(
		"essaylens_backend_requests_total",
		metric.WithDescription("Total number of analysis service requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend request count metric: %w", err)
	}

	om.metrics.BackendErrorCount, err = meter.Int64Counter(
		"essaylens_backend_errors_total",
		metric.WithDescription("Total number of failed analysis service requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend error count metric: %w", err)
	}

	return nil
}

// createBusinessMetrics creates render and export metrics
func (om *ObservabilityManager) createBusinessMetrics(meter metric.Meter) error {
	var err error

	om.metrics.ReportsRendered, err = meter.Int64Counter(
		"essaylens_reports_rendered_total",
		metric.WithDescription("Total number of rendered reports by format"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reports rendered metric: %w", err)
	}

	om.metrics.ReportSize, err = meter.Int64Histogram(
		"essaylens_report_size_bytes",
		metric.WithDescription("Size of rendered reports"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create report size metric: %w", err)
	}

	om.metrics.ExportsTotal, err = meter.Int64Counter(
		"essaylens_exports_total",
		metric.WithDescription("Total number of PDF exports by path and outcome"),
	)
	if err != nil {
		return fmt.Errorf("failed to create exports metric: %w", err)
	}

	om.metrics.ExportDuration, err = meter.Float64Histogram(
		"essaylens_export_duration_seconds",
		metric.WithDescription("Time spent building and rasterizing PDF exports"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create export duration metric: %w", err)
	}

	om.metrics.ExportSize, err = meter.Int64Histogram(
		"essaylens_export_size_bytes",
		metric.WithDescription("Size of exported PDF artifacts"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create export size metric: %w", err)
	}

	return nil
}

// createInfrastructureMetrics creates rate limiting and circuit breaker metrics
func (om *ObservabilityManager) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"essaylens_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	om.metrics.CircuitStateChanges, err = meter.Int64Counter(
		"essaylens_circuit_state_changes_total",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create circuit state metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled || om.tracerProvider == nil {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(om.tracerProvider)}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackBackendOperation instruments one analysis service call with a span and metrics
func (om *ObservabilityManager) TrackBackendOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	m := om.GetMetrics()
	if m.BackendRequestCount == nil {
		// Metrics not initialized, just run the function
		return fn(ctx)
	}

	ctx, span := om.Tracer("essaylens.backend").Start(ctx, "backend."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	if om.isBackendMetricsEnabled() {
		attrs := []attribute.KeyValue{
			attribute.String("operation", operation),
			attribute.Bool("success", err == nil),
		}
		if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.BackendOperations.TrackDuration {
			m.BackendDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		}
		m.BackendRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		if err != nil {
			m.BackendErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.SetAttributes(attrs...)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

// isBackendMetricsEnabled checks if backend call metrics are enabled in the configuration
func (om *ObservabilityManager) isBackendMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.BackendOperations.Enabled
}

// RecordRender counts one rendered report
func (om *ObservabilityManager) RecordRender(ctx context.Context, format string, size int, success bool) {
	m := om.GetMetrics()
	if m.ReportsRendered == nil || !om.businessMetricsEnabled() {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.Bool("success", success),
	)
	m.ReportsRendered.Add(ctx, 1, attrs)
	if success && om.trackContentSizes() {
		m.ReportSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("format", format)))
	}
}

// RecordExport records the outcome of one PDF export. path is "primary" or "legacy".
func (om *ObservabilityManager) RecordExport(ctx context.Context, path string, duration time.Duration, size int, success bool) {
	m := om.GetMetrics()
	if m.ExportsTotal == nil || !om.businessMetricsEnabled() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("path", path),
		attribute.Bool("success", success),
	}
	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.BusinessMetrics.TrackSuccessRates {
		m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.ExportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if success && om.trackContentSizes() {
		m.ExportSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("path", path)))
	}
}

// RecordRateLimitHit counts one rejected request
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, route string) {
	m := om.GetMetrics()
	if m.RateLimitHits == nil || !om.infrastructureEnabled(func(c config.InfrastructureMetricsConfig) bool { return c.TrackRateLimits }) {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}

// RecordCircuitStateChange counts one breaker transition
func (om *ObservabilityManager) RecordCircuitStateChange(ctx context.Context, name, from, to string) {
	m := om.GetMetrics()
	if m.CircuitStateChanges == nil || !om.infrastructureEnabled(func(c config.InfrastructureMetricsConfig) bool { return c.TrackCircuitOpen }) {
		return
	}
	m.CircuitStateChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (om *ObservabilityManager) businessMetricsEnabled() bool {
	return om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled
}

func (om *ObservabilityManager) trackContentSizes() bool {
	return om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.BusinessMetrics.TrackContentSizes
}

func (om *ObservabilityManager) infrastructureEnabled(track func(config.InfrastructureMetricsConfig) bool) bool {
	if om.fullConfig == nil {
		return true
	}
	infra := om.fullConfig.Observability.CustomMetrics.Infrastructure
	return infra.Enabled && track(infra)
}

// No-op exporters for when console output is disabled
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := om.getMetricsCollectionInterval()
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), nil
}

// getServiceInstanceID returns the service instance ID from config or generates one
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return "essaylens-1"
}

// getSampleRate prefers the tracing-specific rate over the global one
func (om *ObservabilityManager) getSampleRate() float64 {
	if om.fullConfig != nil && om.fullConfig.Observability.Tracing.SampleRate > 0 {
		return om.fullConfig.Observability.Tracing.SampleRate
	}
	return om.config.SampleRate
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
