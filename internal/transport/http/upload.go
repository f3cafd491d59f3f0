package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"brandsales/internal/dataprocessing"
	apierrors "brandsales/internal/errors"
	"brandsales/internal/services"
)

const (
	// UploadField is the multipart form field carrying the report file
	UploadField = "file"

	// multipartMemory is kept in memory before form parts spill to disk
	multipartMemory = 8 << 20

	// multipartOverhead covers boundaries and part headers on top of the
	// file itself
	multipartOverhead = 64 << 10
)

// readUpload extracts the report file from a multipart request. The caller
// must invoke the returned cleanup once the upload has been consumed.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (services.Upload, func(), error) {
	noop := func() {}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Upload{}, noop, apierrors.PayloadTooLarge(maxBytes)
		}
		return services.Upload{}, noop, apierrors.InvalidRequestWithError(err)
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		removeForm(r.MultipartForm)
		if errors.Is(err, http.ErrMissingFile) {
			return services.Upload{}, noop, apierrors.ErrMissingFile
		}
		return services.Upload{}, noop, apierrors.InvalidRequestWithError(err)
	}

	cleanup := func() {
		file.Close()
		removeForm(r.MultipartForm)
	}
	return services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, cleanup, nil
}

func removeForm(form *multipart.Form) {
	if form != nil {
		_ = form.RemoveAll()
	}
}

// reportError maps report processing failures onto API errors. Domain error
// messages are passed through verbatim; anything unrecognised is returned
// unchanged for the error handler to classify.
func reportError(err error) error {
	var (
		maxErr   *http.MaxBytesError
		colErr   *dataprocessing.MissingColumnError
		fieldErr *dataprocessing.MissingFieldError
		parseErr *dataprocessing.ParseError
	)

	switch {
	case errors.As(err, &maxErr):
		return apierrors.PayloadTooLarge(maxErr.Limit)
	case errors.As(err, &colErr):
		return apierrors.MissingColumn(colErr.Error())
	case errors.As(err, &fieldErr):
		return apierrors.MissingField(fieldErr.Error())
	case errors.As(err, &parseErr):
		return apierrors.ReportParseFailed(parseErr.Error(), parseErr.Line)
	default:
		return err
	}
}
