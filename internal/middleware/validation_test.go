package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "brandsales/internal/errors"
)

type exportQuery struct {
	Format   string `query:"format" validate:"required,oneof=csv xlsx"`
	Filename string `json:"filename" validate:"omitempty,filename"`
}

func TestRequestValidator_ValidateStruct(t *testing.T) {
	v := NewRequestValidator(slog.Default())

	tests := []struct {
		name       string
		input      exportQuery
		wantFields []string
		wantMsg    string
	}{
		{name: "valid", input: exportQuery{Format: "csv"}},
		{name: "valid with filename", input: exportQuery{Format: "xlsx", Filename: "march.csv"}},
		{name: "missing format", input: exportQuery{}, wantFields: []string{"format"}, wantMsg: "format is required"},
		{name: "unknown format", input: exportQuery{Format: "pdf"}, wantFields: []string{"format"}, wantMsg: "format must be one of: csv, xlsx"},
		{name: "traversal filename", input: exportQuery{Format: "csv", Filename: "../etc/passwd"}, wantFields: []string{"filename"}, wantMsg: "filename must be a valid filename"},
		{name: "both invalid", input: exportQuery{Format: "pdf", Filename: `a\b`}, wantFields: []string{"format", "filename"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, len(tt.wantFields))
			for i, field := range tt.wantFields {
				assert.Equal(t, field, details.Errors[i].Field)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, details.Errors[0].Message)
			}
		})
	}
}

func TestRequestValidator_ValidateEnum(t *testing.T) {
	v := NewRequestValidator(nil)
	allowed := []string{"csv", "xlsx"}

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	got, err := v.ValidateEnum(req, "format", allowed, "csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", got)

	req = httptest.NewRequest(http.MethodGet, "/export?format=xlsx", nil)
	got, err = v.ValidateEnum(req, "format", allowed, "csv")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", got)

	req = httptest.NewRequest(http.MethodGet, "/export?format=XLSX", nil)
	_, err = v.ValidateEnum(req, "format", allowed, "csv")
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)
}

func TestContentTypeValidator(t *testing.T) {
	errHandler := apierrors.NewErrorHandler(slog.Default(), false)
	handler := ContentTypeValidator(errHandler, "multipart/form-data")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "multipart accepted", method: http.MethodPost, contentType: "multipart/form-data; boundary=xyz", wantStatus: http.StatusOK},
		{name: "GET skipped", method: http.MethodGet, contentType: "", wantStatus: http.StatusOK},
		{name: "missing content type", method: http.MethodPost, contentType: "", wantStatus: http.StatusBadRequest},
		{name: "json rejected", method: http.MethodPost, contentType: "application/json", wantStatus: http.StatusUnsupportedMediaType},
		{name: "malformed", method: http.MethodPost, contentType: "multipart/;;", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/reports/summary", strings.NewReader("x"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
