// Package api contains the request and response contracts of the brand sales
// HTTP API. Version v1 is the current stable API version.
package api

// Response status values
const (
	StatusSuccess = "success"
)

// ExportRequest represents the query parameters of a summary export
type ExportRequest struct {
	Format string `json:"format" query:"format" validate:"required,oneof=csv xlsx"`
}

// DataResponse is the envelope of successful JSON responses
type DataResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in a success envelope
func Success(data interface{}) DataResponse {
	return DataResponse{Status: StatusSuccess, Data: data}
}
