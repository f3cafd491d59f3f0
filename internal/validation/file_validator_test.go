package validation

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandsales/internal/config"
	apierrors "brandsales/internal/errors"
	"brandsales/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger, config.UploadConfig{
		MaxBytes:          1024,
		AllowedExtensions: []string{".csv", ".XLSX"},
	})
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name       string
		filename   string
		size       int64
		wantStatus int
		wantCode   string
	}{
		{name: "csv", filename: "BusinessReport.csv", size: 100},
		{name: "xlsx upper case", filename: "report.XLSX", size: 100},
		{name: "exactly at limit", filename: "report.csv", size: 1024},
		{name: "path components stripped", filename: "../../reports/march.csv", size: 10},
		{name: "no name", filename: "", size: 10, wantStatus: http.StatusBadRequest, wantCode: apierrors.CodeValidationFailed},
		{name: "wrong extension", filename: "report.pdf", size: 10, wantStatus: http.StatusBadRequest, wantCode: apierrors.CodeValidationFailed},
		{name: "legacy xls", filename: "report.xls", size: 10, wantStatus: http.StatusBadRequest, wantCode: apierrors.CodeValidationFailed},
		{name: "empty", filename: "report.csv", size: 0, wantStatus: http.StatusBadRequest, wantCode: apierrors.CodeValidationFailed},
		{name: "too large", filename: "report.csv", size: 1025, wantStatus: http.StatusRequestEntityTooLarge, wantCode: apierrors.CodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}

func TestFileValidator_ValidateUpload_LogsRejection(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	v := NewFileValidator(logger, config.UploadConfig{MaxBytes: 10, AllowedExtensions: []string{".csv"}})

	require.Error(t, v.ValidateUpload("big.csv", 11))
	assert.True(t, logs.ContainsMessage("Upload rejected: too large"))
	assert.True(t, logs.ContainsAttr("component", "file_validator"))
}

func TestFileValidator_ValidateReportFile(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		errorContains string
		wantType      apierrors.ErrorType
	}{
		{
			name: "valid csv",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "report.csv")
				require.NoError(t, os.WriteFile(path, []byte(testutil.SampleReportCSV), 0o644))
				return path
			},
		},
		{
			name: "missing",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			errorContains: "not found",
			wantType:      apierrors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "dir.csv")
				require.NoError(t, os.Mkdir(dir, 0o755))
				return dir
			},
			errorContains: "is a directory",
			wantType:      apierrors.ErrTypeValidation,
		},
		{
			name: "excel lock file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$report.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0o644))
				return path
			},
			errorContains: "temporary Excel file",
			wantType:      apierrors.ErrTypeValidation,
		},
		{
			name: "unsupported extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "report.txt")
				require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
				return path
			},
			errorContains: "not a supported report",
			wantType:      apierrors.ErrTypeValidation,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "report.csv")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				return path
			},
			errorContains: "is empty",
			wantType:      apierrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateReportFile(tt.setup(t))
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)

			var appErr *apierrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newValidator(t)

	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe is removed")

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err = v.ValidateOutputDirectory(filepath.Join(blocker, "out"))
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
}

func TestFileValidator_IsAllowedExtension(t *testing.T) {
	v := newValidator(t)

	assert.True(t, v.IsAllowedExtension("a.csv"))
	assert.True(t, v.IsAllowedExtension("a.CSV"))
	assert.True(t, v.IsAllowedExtension("a.xlsx"))
	assert.False(t, v.IsAllowedExtension("a.csv.bak"))
	assert.False(t, v.IsAllowedExtension("csv"))
	assert.Equal(t, int64(1024), v.MaxBytes())
}
