package server

import (
	"errors"

	"github.com/keeperhq/memorybank/internal/errortypes"
)

// ErrorResponse is the structured error payload attached to tool
// responses when a call fails.
type ErrorResponse struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// Error codes exposed to tool callers.
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeDatabaseError   = "DATABASE_ERROR"
	StatusCodeEmbeddingError  = "EMBEDDING_ERROR"
	StatusCodeExternalError   = "EXTERNAL_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// CodeForError maps an error to the code reported to tool callers.
func CodeForError(err error) string {
	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		return StatusCodeUnknownError
	}

	switch appErr.Type {
	case errortypes.ErrorTypeValidation:
		return StatusCodeValidationError
	case errortypes.ErrorTypeDatabase:
		return StatusCodeDatabaseError
	case errortypes.ErrorTypeEmbedding:
		return StatusCodeEmbeddingError
	case errortypes.ErrorTypeAPI:
		return StatusCodeExternalError
	case errortypes.ErrorTypeConfig:
		return StatusCodeConfigError
	case errortypes.ErrorTypeInternal:
		return StatusCodeInternalError
	}
	return StatusCodeUnknownError
}

// errorToResponse converts an error to a standardized ErrorResponse.
func errorToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Status:  "error",
		Code:    CodeForError(err),
		Message: err.Error(),
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		resp.Details = appErr.Fields
		resp.StackTrace = appErr.StackInfo
	}
	return resp
}
