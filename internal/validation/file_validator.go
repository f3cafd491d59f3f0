package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"brandsales/internal/config"
	apierrors "brandsales/internal/errors"
)

// FileValidator checks report files before they are parsed, both uploads on
// the HTTP server and paths given to the command line tool
type FileValidator struct {
	logger            *slog.Logger
	maxBytes          int64
	allowedExtensions []string
}

// NewFileValidator creates a validator enforcing the upload limits in cfg
func NewFileValidator(logger *slog.Logger, cfg config.UploadConfig) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &FileValidator{
		logger:            logger.With(slog.String("component", "file_validator")),
		maxBytes:          cfg.MaxBytes,
		allowedExtensions: exts,
	}
}

// MaxBytes returns the upload size limit
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

// IsAllowedExtension reports whether filename carries an accepted extension.
// Comparison ignores case.
func (v *FileValidator) IsAllowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range v.allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateUpload checks an uploaded file by its client supplied name and size.
// Failures are APIErrors ready for the error handler.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	base := filepath.Base(filepath.Clean("/" + filename))
	if filename == "" || base == "/" {
		return apierrors.ErrValidation("file", "uploaded file has no name")
	}

	if !v.IsAllowedExtension(base) {
		v.logger.Warn("Upload rejected: unsupported extension",
			slog.String("filename", base),
			slog.String("extension", filepath.Ext(base)))
		return apierrors.ErrValidation("file",
			fmt.Sprintf("unsupported file type %q, expected one of: %s", filepath.Ext(base), strings.Join(v.allowedExtensions, ", ")))
	}

	if size == 0 {
		v.logger.Warn("Upload rejected: empty file", slog.String("filename", base))
		return apierrors.ErrValidation("file", "uploaded file is empty")
	}

	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Upload rejected: too large",
			slog.String("filename", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return apierrors.PayloadTooLarge(v.maxBytes)
	}

	v.logger.Debug("Upload validated",
		slog.String("filename", base),
		slog.Int64("size", size))
	return nil
}

// ValidateReportFile checks that path names a readable report file with an
// accepted extension. Excel lock files ("~$name.xlsx") are refused.
func (v *FileValidator) ValidateReportFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Report file does not exist", slog.String("file", path))
		return apierrors.NewNotFoundError("report file " + path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return apierrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Refusing temporary Excel file", slog.String("file", path))
		return apierrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}
	if !v.IsAllowedExtension(base) {
		return apierrors.NewAppValidationError(fmt.Sprintf("file %s is not a supported report (extension: %s)", path, filepath.Ext(base))).
			WithContext("extension", filepath.Ext(base))
	}
	if info.Size() == 0 {
		return apierrors.NewAppValidationError(fmt.Sprintf("file %s is empty", path))
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Report file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory of an output file exists and
// is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apierrors.NewStorageError("failed to create output directory "+dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError("output directory "+dir+" is not writable", err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	return nil
}
