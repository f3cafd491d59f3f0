package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"brandsales/internal/dataprocessing"
	apierrors "brandsales/internal/errors"
	"brandsales/internal/exporter"
	"brandsales/internal/infrastructure"
	"brandsales/pkg/contracts/domain"
)

const (
	operationSummary = "summary"
	operationExport  = "export"
)

// Upload is one report file submitted for aggregation
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// SummaryResult is the brand summary of one uploaded report
type SummaryResult struct {
	ReportID       uuid.UUID             `json:"report_id"`
	Filename       string                `json:"filename"`
	Rows           int                   `json:"rows"`
	HasB2B         bool                  `json:"has_b2b"`
	ConsumerColumn string                `json:"consumer_column"`
	B2BColumn      string                `json:"b2b_column,omitempty"`
	Summary        []domain.BrandSummary `json:"summary"`
	Totals         domain.BrandSummary   `json:"totals"`
	ProcessedAt    time.Time             `json:"processed_at"`
}

// ExportResult is a rendered summary ready for download
type ExportResult struct {
	*SummaryResult
	Format       exporter.Format
	ContentType  string
	DownloadName string
	Data         []byte
}

// UploadValidator checks an upload before it is parsed
type UploadValidator interface {
	ValidateUpload(filename string, size int64) error
}

// ReportService turns uploaded sales reports into brand summaries
type ReportService struct {
	aggregator *dataprocessing.Aggregator
	validator  UploadValidator
	tracer     trace.Tracer
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewReportService creates the service. validator, tracer and metrics may be
// nil, which disables the respective concern.
func NewReportService(classifier dataprocessing.Classifier, validator UploadValidator, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}
	return &ReportService{
		aggregator: dataprocessing.NewAggregator(classifier, logger),
		validator:  validator,
		tracer:     tracer,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "report_service")),
		now:        time.Now,
	}
}

// Summarize aggregates an uploaded report into its brand summary.
// Domain errors from the reader and aggregator are returned unwrapped.
func (s *ReportService) Summarize(ctx context.Context, upload Upload) (*SummaryResult, error) {
	ctx, span := s.tracer.Start(ctx, "report.summarize",
		trace.WithAttributes(
			attribute.String("report.filename", upload.Filename),
			attribute.Int64("report.size_bytes", upload.Size),
		),
	)
	defer span.End()

	result, err := s.process(ctx, operationSummary, upload)
	if err != nil {
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Export aggregates an uploaded report and renders the summary table in the
// given format
func (s *ReportService) Export(ctx context.Context, upload Upload, format exporter.Format) (*ExportResult, error) {
	ctx, span := s.tracer.Start(ctx, "report.export",
		trace.WithAttributes(
			attribute.String("report.filename", upload.Filename),
			attribute.Int64("report.size_bytes", upload.Size),
			attribute.String("export.format", string(format)),
		),
	)
	defer span.End()

	result, err := s.process(ctx, operationExport, upload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, format, result.Summary); err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "summary export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, apierrors.NewStorageError("failed to render summary", err)
	}

	span.SetAttributes(attribute.Int("export.bytes", buf.Len()))
	return &ExportResult{
		SummaryResult: result,
		Format:        format,
		ContentType:   format.ContentType(),
		DownloadName:  ExportFilename(upload.Filename, format),
		Data:          buf.Bytes(),
	}, nil
}

// process runs validation, parsing and aggregation and records the outcome
func (s *ReportService) process(ctx context.Context, operation string, upload Upload) (*SummaryResult, error) {
	start := time.Now()
	outcome := infrastructure.ReportOutcome{Operation: operation, Bytes: upload.Size}

	result, err := s.run(ctx, upload)

	outcome.Duration = time.Since(start)
	if err != nil {
		outcome.ErrorCode = ErrorCode(err)
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "report rejected",
			slog.String("operation", operation),
			slog.String("filename", upload.Filename),
			slog.String("error_code", outcome.ErrorCode),
			slog.String("error", err.Error()))
	} else {
		outcome.Rows = result.Rows
		s.logger.InfoContext(ctx, "report summarized",
			slog.String("operation", operation),
			slog.String("report_id", result.ReportID.String()),
			slog.String("filename", upload.Filename),
			slog.Int("rows", result.Rows),
			slog.Int("brands", len(result.Summary)),
			slog.Duration("duration", outcome.Duration))
	}
	infrastructure.RecordReportMetrics(ctx, s.metrics, outcome)

	return result, err
}

func (s *ReportService) run(ctx context.Context, upload Upload) (*SummaryResult, error) {
	if s.validator != nil {
		if err := s.validator.ValidateUpload(upload.Filename, upload.Size); err != nil {
			return nil, err
		}
	}
	if upload.Content == nil {
		return nil, apierrors.ErrMissingFile
	}

	report, err := dataprocessing.ReadReport(upload.Content, upload.Filename)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agg, err := s.aggregator.Summarize(ctx, report)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		ReportID:       uuid.New(),
		Filename:       upload.Filename,
		Rows:           agg.Rows,
		HasB2B:         agg.Columns.HasB2B,
		ConsumerColumn: agg.Columns.Consumer,
		B2BColumn:      agg.Columns.B2B,
		Summary:        agg.Summary,
		Totals:         dataprocessing.GrandTotals(agg.Summary),
		ProcessedAt:    s.now().UTC(),
	}, nil
}

// ErrorCode classifies a report processing error for metrics and responses
func ErrorCode(err error) string {
	var (
		colErr   *dataprocessing.MissingColumnError
		fieldErr *dataprocessing.MissingFieldError
		parseErr *dataprocessing.ParseError
		apiErr   *apierrors.APIError
		maxErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxErr):
		return apierrors.CodePayloadTooLarge
	case errors.As(err, &colErr):
		return apierrors.CodeMissingColumn
	case errors.As(err, &fieldErr):
		return apierrors.CodeMissingField
	case errors.As(err, &parseErr):
		return apierrors.CodeParseError
	case errors.As(err, &apiErr):
		return apiErr.ErrorCode
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "CANCELLED"
	default:
		return apierrors.CodeInternal
	}
}

// ExportFilename derives the download name from the uploaded file name:
// "BusinessReport.csv" becomes "BusinessReport-brand-summary.xlsx"
func ExportFilename(uploaded string, format exporter.Format) string {
	base := filepath.Base(filepath.Clean("/" + uploaded))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "/" || base == "." {
		base = "report"
	}
	return fmt.Sprintf("%s-brand-summary%s", base, format.Extension())
}
