package http

import (
	_ "embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	apierrors "brandsales/internal/errors"
	"brandsales/internal/exporter"
	"brandsales/internal/services"
	"brandsales/pkg/contracts/domain"
)

//go:embed templates/report.html
var reportPageHTML string

var reportPage = template.Must(template.New("report").Parse(reportPageHTML))

// unexpectedErrorMessage is shown for failures whose message is not meant
// for the user
const unexpectedErrorMessage = "an unexpected error occurred"

// HTMLHandler serves the upload page
type HTMLHandler struct {
	service    ReportService
	money      *exporter.MoneyFormatter
	maxBytes   int64
	extensions []string
	logger     *slog.Logger
}

// NewHTMLHandler creates the upload page handler. extensions limits the file
// picker; the server side check is done by the report service.
func NewHTMLHandler(service ReportService, money *exporter.MoneyFormatter, maxBytes int64, extensions []string, logger *slog.Logger) *HTMLHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLHandler{
		service:    service,
		money:      money,
		maxBytes:   maxBytes,
		extensions: extensions,
		logger:     logger.With(slog.String("component", "html_handler")),
	}
}

type pageData struct {
	Accept string
	Header []string
	Error  string
	Result *services.SummaryResult
	Rows   []pageRow
}

type pageRow struct {
	Brand    string
	Consumer string
	B2B      string
	Total    string
}

// Index handles GET /
func (h *HTMLHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.page())
}

// Report handles POST /report
func (h *HTMLHandler) Report(w http.ResponseWriter, r *http.Request) {
	data := h.page()

	result, err := h.process(w, r)
	if err != nil {
		status, message := pageError(err)
		h.logger.WarnContext(r.Context(), "report page failed",
			slog.Int("status", status),
			slog.String("error", err.Error()))
		data.Error = message
		h.render(w, r, status, data)
		return
	}

	data.Result = result
	for _, row := range result.Summary {
		data.Rows = append(data.Rows, h.pageRow(row))
	}
	h.render(w, r, http.StatusOK, data)
}

func (h *HTMLHandler) process(w http.ResponseWriter, r *http.Request) (*services.SummaryResult, error) {
	upload, cleanup, err := readUpload(w, r, h.maxBytes)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := h.service.Summarize(r.Context(), upload)
	if err != nil {
		return nil, reportError(err)
	}
	return result, nil
}

func (h *HTMLHandler) page() pageData {
	return pageData{
		Accept: strings.Join(h.extensions, ","),
		Header: domain.SummaryHeader,
	}
}

func (h *HTMLHandler) pageRow(s domain.BrandSummary) pageRow {
	return pageRow{
		Brand:    s.Brand,
		Consumer: h.money.Format(s.ConsumerSales),
		B2B:      h.money.Format(s.B2BSales),
		Total:    h.money.Format(s.TotalSales),
	}
}

func (h *HTMLHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf strings.Builder
	if err := reportPage.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "report page render failed",
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// pageError picks the status and user facing message of a failed upload
func pageError(err error) (int, string) {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, unexpectedErrorMessage
	}

	switch details := apiErr.Details.(type) {
	case apierrors.ValidationError:
		return apiErr.StatusCode, details.Message
	case string:
		if apiErr.ErrorCode == apierrors.CodeInvalidRequest {
			return apiErr.StatusCode, details
		}
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		return apiErr.StatusCode, unexpectedErrorMessage
	}
	return apiErr.StatusCode, apiErr.Message
}
