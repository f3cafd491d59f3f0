package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brandsales/internal/dataprocessing"
	apierrors "brandsales/internal/errors"
	"brandsales/internal/exporter"
	"brandsales/internal/middleware"
	"brandsales/internal/services"
	"brandsales/internal/shared/testutil"
	"brandsales/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summarize(ctx context.Context, upload services.Upload) (*services.SummaryResult, error) {
	args := m.Called(upload.Filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SummaryResult), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, upload services.Upload, format exporter.Format) (*services.ExportResult, error) {
	args := m.Called(upload.Filename, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

func sampleResult() *services.SummaryResult {
	summary := testutil.SampleSummary()
	return &services.SummaryResult{
		ReportID:       uuid.New(),
		Filename:       "BusinessReport.csv",
		Rows:           3,
		HasB2B:         true,
		ConsumerColumn: "Ordered Product Sales",
		B2BColumn:      "Ordered Product Sales – B2B",
		Summary:        summary,
		Totals:         dataprocessing.GrandTotals(summary),
		ProcessedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// multipartBody builds an upload form. An empty filename leaves the file
// field out.
func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile(UploadField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newReportRouter(t *testing.T, svc ReportService, maxBytes int64) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errHandler := apierrors.NewErrorHandler(logger, false)
	handler := NewReportHandler(svc, middleware.NewRequestValidator(logger), errHandler, maxBytes, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/reports", handler.Routes())
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestReportHandler_Summarize(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedCode   string
		expectedDetail string
	}{
		{
			name: "success",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(sampleResult(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing consumer column",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(nil, &dataprocessing.MissingColumnError{Column: "Ordered Product Sales"})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeMissingColumn,
			expectedDetail: "couldn't find 'Ordered Product Sales' column",
		},
		{
			name: "missing SKU",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(nil, &dataprocessing.MissingFieldError{Field: "SKU"})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.CodeMissingField,
			expectedDetail: "report has no 'SKU' column",
		},
		{
			name: "parse error",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(nil, &dataprocessing.ParseError{Line: 3, Err: errors.New("bare quote")})
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.CodeParseError,
			expectedDetail: "failed to parse report at line 3: bare quote",
		},
		{
			name: "upload rejected",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(nil, apierrors.PayloadTooLarge(10))
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedCode:   apierrors.CodePayloadTooLarge,
		},
		{
			name: "internal error",
			setupMock: func(m *MockReportService) {
				m.On("Summarize", "BusinessReport.csv").Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)
			router := newReportRouter(t, svc, 1<<20)

			body, contentType := multipartBody(t, "BusinessReport.csv", testutil.SampleReportCSV)
			req := httptest.NewRequest(http.MethodPost, "/api/reports/summary", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			payload := decodeBody(t, rec)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "success", payload["status"])
				data := payload["data"].(map[string]interface{})
				assert.Equal(t, "BusinessReport.csv", data["filename"])
				summary := data["summary"].([]interface{})
				require.Len(t, summary, 3)
				assert.Equal(t, "Theonia EU", summary[0].(map[string]interface{})["brand"])
			} else {
				assert.NotEmpty(t, payload["trace_id"])
				if tt.expectedCode != "" {
					assert.Equal(t, tt.expectedCode, payload["error_code"])
				}
				if tt.expectedDetail != "" {
					assert.Equal(t, tt.expectedDetail, payload["detail"])
				}
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_SummarizeRequestErrors(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		svc := new(MockReportService)
		router := newReportRouter(t, svc, 1<<20)

		body, contentType := multipartBody(t, "", "")
		req := httptest.NewRequest(http.MethodPost, "/api/reports/summary", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.CodeMissingParameter, decodeBody(t, rec)["error_code"])
		svc.AssertNotCalled(t, "Summarize", mock.Anything)
	})

	t.Run("json body", func(t *testing.T) {
		svc := new(MockReportService)
		router := newReportRouter(t, svc, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/api/reports/summary", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		svc.AssertNotCalled(t, "Summarize", mock.Anything)
	})

	t.Run("body over limit", func(t *testing.T) {
		svc := new(MockReportService)
		router := newReportRouter(t, svc, 16)

		body, contentType := multipartBody(t, "big.csv", strings.Repeat("a", multipartOverhead+1024))
		req := httptest.NewRequest(http.MethodPost, "/api/reports/summary", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, apierrors.CodePayloadTooLarge, decodeBody(t, rec)["error_code"])
		svc.AssertNotCalled(t, "Summarize", mock.Anything)
	})

	t.Run("wrong method", func(t *testing.T) {
		svc := new(MockReportService)
		router := newReportRouter(t, svc, 1<<20)

		req := httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestReportHandler_Export(t *testing.T) {
	exportResult := func(format exporter.Format) *services.ExportResult {
		return &services.ExportResult{
			SummaryResult: sampleResult(),
			Format:        format,
			ContentType:   format.ContentType(),
			DownloadName:  services.ExportFilename("BusinessReport.csv", format),
			Data:          []byte("Brand,Consumer Sales,B2B Sales,Total Sales\n"),
		}
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedType   string
		expectedName   string
	}{
		{
			name:  "csv",
			query: "?format=csv",
			setupMock: func(m *MockReportService) {
				m.On("Export", "BusinessReport.csv", exporter.FormatCSV).Return(exportResult(exporter.FormatCSV), nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   "text/csv; charset=utf-8",
			expectedName:   "BusinessReport-brand-summary.csv",
		},
		{
			name:  "xlsx",
			query: "?format=xlsx",
			setupMock: func(m *MockReportService) {
				m.On("Export", "BusinessReport.csv", exporter.FormatXLSX).Return(exportResult(exporter.FormatXLSX), nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   exporter.FormatXLSX.ContentType(),
			expectedName:   "BusinessReport-brand-summary.xlsx",
		},
		{
			name:  "defaults to csv",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("Export", "BusinessReport.csv", exporter.FormatCSV).Return(exportResult(exporter.FormatCSV), nil)
			},
			expectedStatus: http.StatusOK,
			expectedType:   "text/csv; charset=utf-8",
			expectedName:   "BusinessReport-brand-summary.csv",
		},
		{
			name:           "unknown format",
			query:          "?format=pdf",
			setupMock:      func(m *MockReportService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "domain error",
			query: "?format=csv",
			setupMock: func(m *MockReportService) {
				m.On("Export", "BusinessReport.csv", exporter.FormatCSV).Return(nil, &dataprocessing.MissingColumnError{Column: "Ordered Product Sales"})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)
			router := newReportRouter(t, svc, 1<<20)

			body, contentType := multipartBody(t, "BusinessReport.csv", testutil.SampleReportCSV)
			req := httptest.NewRequest(http.MethodPost, "/api/reports/summary/export"+tt.query, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedType, rec.Header().Get("Content-Type"))
				assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
				assert.Contains(t, rec.Header().Get("Content-Disposition"), tt.expectedName)
				assert.True(t, strings.HasPrefix(rec.Body.String(), strings.Join(domain.SummaryHeader, ",")))
			} else {
				payload := decodeBody(t, rec)
				assert.Contains(t, payload, "error_code")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"column", &dataprocessing.MissingColumnError{Column: "x"}, http.StatusUnprocessableEntity, apierrors.CodeMissingColumn},
		{"field", &dataprocessing.MissingFieldError{Field: "SKU"}, http.StatusUnprocessableEntity, apierrors.CodeMissingField},
		{"parse", &dataprocessing.ParseError{Err: errors.New("bad")}, http.StatusBadRequest, apierrors.CodeParseError},
		{"max bytes inside parse", &dataprocessing.ParseError{Err: &http.MaxBytesError{Limit: 5}}, http.StatusRequestEntityTooLarge, apierrors.CodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *apierrors.APIError
			require.True(t, errors.As(reportError(tt.err), &apiErr))
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}

	other := errors.New("other")
	assert.Same(t, other, reportError(other))
}
