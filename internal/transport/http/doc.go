// Package http implements the HTTP handlers of the brand sales service.
//
// Handlers stay thin: they read the multipart upload, delegate to the report
// service and format the response. Failures are rendered as RFC 7807 problem
// documents by errors.ErrorHandler, with report errors mapped first:
//
//	MissingColumnError → 422 MISSING_COLUMN
//	MissingFieldError  → 422 MISSING_FIELD
//	ParseError         → 400 PARSE_ERROR
//	oversized upload   → 413 PAYLOAD_TOO_LARGE
//
// The upload page at / renders the same summary as HTML with amounts
// formatted for display.
package http
