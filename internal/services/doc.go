// Package services implements the business logic layer of the brand sales
// aggregator. It sits between the HTTP handlers (and the command line tool)
// and the dataprocessing pipeline.
//
// # Architecture
//
// Services follow these principles:
//
//  1. Dependencies are injected through constructors
//  2. Context is propagated for cancellation and tracing
//  3. Domain errors are returned unchanged so callers can map them
//  4. Every report attempt is logged and recorded in metrics
//
// # Available Services
//
//   - ReportService: validates an upload, parses it, aggregates brand totals
//     and optionally renders the summary as CSV or XLSX
//   - HealthService: liveness, readiness and version information
//
// # Error Handling
//
// ReportService returns the dataprocessing errors (MissingColumnError,
// MissingFieldError, ParseError) and upload validation APIErrors as they are.
// ErrorCode classifies any of them into the error codes used by the metrics
// and the HTTP problem responses.
//
// # Testing
//
// Services run with no-op OpenTelemetry providers when tracer and metrics are
// nil, so tests only need a logger:
//
//	svc := NewReportService(classifier, nil, nil, nil, logger)
//	result, err := svc.Summarize(ctx, Upload{Filename: "r.csv", Size: n, Content: r})
package services
