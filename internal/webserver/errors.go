package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"arffstats/internal/source"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeDataset    ErrorType = "dataset"
	ErrorTypeInternal   ErrorType = "internal"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Details     string    `json:"details"`
}

// CategorizeError analyzes an error and returns an appropriate ErrorResponse
func CategorizeError(err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{
			Type:        ErrorTypeInternal,
			Code:        "unknown_error",
			Title:       "Processing error",
			Description: "The dataset could not be processed.",
			Details:     "No error details available",
		}
	}

	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		return ErrorResponse{
			Type:        ErrorTypeUpload,
			Code:        "upload_too_large",
			Title:       "Upload too large",
			Description: fmt.Sprintf("Uploads are limited to %d bytes.", maxBytesErr.Limit),
			Details:     err.Error(),
		}
	case errors.Is(err, ErrInvalidFileName):
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "invalid_file_name",
			Title:       "Invalid file name",
			Description: "Name the file <userid>.arff or send the userid field.",
			Details:     err.Error(),
		}
	case errors.Is(err, ErrInvalidUpload):
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "invalid_upload",
			Title:       "Invalid upload",
			Description: "The uploaded file is not an accepted dataset.",
			Details:     err.Error(),
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return ErrorResponse{
			Type:        ErrorTypeUpload,
			Code:        "upload_form_error",
			Title:       "Upload form error",
			Description: "Send the dataset as multipart form field \"file\".",
			Details:     err.Error(),
		}
	case errors.Is(err, source.ErrUnsupportedCompression):
		return ErrorResponse{
			Type:        ErrorTypeDataset,
			Code:        "unsupported_compression",
			Title:       "Unsupported compression",
			Description: "Datasets may be plain, gzip, zstd or lz4 compressed.",
			Details:     err.Error(),
		}
	}

	return ErrorResponse{
		Type:        ErrorTypeDataset,
		Code:        "processing_error",
		Title:       "Processing error",
		Description: "The dataset could not be read.",
		Details:     err.Error(),
	}
}

// WriteErrorResponse writes a structured error response as JSON
func WriteErrorResponse(w http.ResponseWriter, err error, statusCode int) {
	errorResp := CategorizeError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if jsonErr := json.NewEncoder(w).Encode(errorResp); jsonErr != nil {
		slog.Error("Failed to encode error response", "error", jsonErr)
	}
}
