// Package instrumentation provides OpenTelemetry instrumentation for calimport.
//
// Instrumentation is off by default for interactive use. It is mostly useful
// for scheduled imports, where the process stays up and a Prometheus scrape
// or an OTLP collector can pick the numbers up.
//
// # Metrics
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of gateway calls by service, operation, status
//   - calendar_api_operation_duration_seconds: Histogram of gateway call durations
//
// Import Metrics:
//   - import_events_total: Counter of candidate events by outcome (created, skipped, failed)
//   - conflicts_detected_total: Counter of candidates that overlapped existing events
//   - import_runs_total: Counter of batch runs by status
//   - import_run_duration_seconds: Histogram of batch run durations
//
// # Tracing
//
// Spans are created for batch runs (import.run), each candidate
// (import.event) and every gateway call (calendar.<service>.<operation>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout, none (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: calimport)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordImportEvent(ctx, instrumentation.OutcomeCreated)
package instrumentation
