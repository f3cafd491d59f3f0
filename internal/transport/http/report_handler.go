package http

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "brandsales/internal/errors"
	"brandsales/internal/exporter"
	"brandsales/internal/middleware"
	"brandsales/internal/services"
	api "brandsales/pkg/contracts/api/v1"
)

// ReportService is the report processing the handlers delegate to
type ReportService interface {
	Summarize(ctx context.Context, upload services.Upload) (*services.SummaryResult, error)
	Export(ctx context.Context, upload services.Upload, format exporter.Format) (*services.ExportResult, error)
}

// ReportHandler serves the JSON report API
type ReportHandler struct {
	service      ReportService
	validator    *middleware.RequestValidator
	errorHandler *apierrors.ErrorHandler
	maxBytes     int64
	logger       *slog.Logger
}

// NewReportHandler creates a report handler. Uploads larger than maxBytes are
// rejected with 413.
func NewReportHandler(service ReportService, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, maxBytes int64, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		maxBytes:     maxBytes,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes, mounted under /api/reports
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/summary", h.Summarize)
	r.Post("/summary/export", h.Export)

	return r
}

// Summarize handles POST /api/reports/summary
func (h *ReportHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer cleanup()

	result, err := h.service.Summarize(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, reportError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "summary served",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("report_id", result.ReportID.String()),
		slog.Int("brands", len(result.Summary)))

	render.JSON(w, r, api.Success(result))
}

// Export handles POST /api/reports/summary/export?format=csv|xlsx
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	query := api.ExportRequest{Format: r.URL.Query().Get("format")}
	if query.Format == "" {
		query.Format = string(exporter.FormatCSV)
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(query.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer cleanup()

	result, err := h.service.Export(r.Context(), upload, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, reportError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "summary exported",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("report_id", result.ReportID.String()),
		slog.String("format", string(result.Format)),
		slog.Int("bytes", len(result.Data)))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": result.DownloadName,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("error", err.Error()))
	}
}
