package server

import (
	"errors"
	"testing"

	"github.com/keeperhq/memorybank/internal/errortypes"
)

func TestCodeForError(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", errortypes.ValidationError(cause, "bad input"), StatusCodeValidationError},
		{"database", errortypes.DatabaseError(cause, "store broke"), StatusCodeDatabaseError},
		{"embedding", errortypes.EmbeddingError(cause, "no vector"), StatusCodeEmbeddingError},
		{"api", errortypes.APIError(cause, "upstream failed"), StatusCodeExternalError},
		{"config", errortypes.ConfigError(cause, "bad config"), StatusCodeConfigError},
		{"internal", errortypes.InternalError(cause, "unexpected"), StatusCodeInternalError},
		{"unwrapped", cause, StatusCodeUnknownError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := CodeForError(test.err); got != test.want {
				t.Errorf("CodeForError() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestErrorToResponse(t *testing.T) {
	err := errortypes.DatabaseError(errors.New("disk full"), "failed to store context").
		WithField("context_id", "abc123")

	resp := errorToResponse(err)

	if resp.Status != "error" {
		t.Errorf("expected status 'error', got %q", resp.Status)
	}
	if resp.Code != StatusCodeDatabaseError {
		t.Errorf("expected code %q, got %q", StatusCodeDatabaseError, resp.Code)
	}
	if resp.Details["context_id"] != "abc123" {
		t.Errorf("expected context field to carry through, got %v", resp.Details)
	}
	if resp.StackTrace == "" {
		t.Errorf("expected a captured stack trace")
	}
}

func TestErrorToResponsePlainError(t *testing.T) {
	resp := errorToResponse(errors.New("plain failure"))

	if resp.Code != StatusCodeUnknownError {
		t.Errorf("expected unknown code for plain errors, got %q", resp.Code)
	}
	if resp.Message != "plain failure" {
		t.Errorf("expected the error text as message, got %q", resp.Message)
	}
	if resp.Details != nil {
		t.Errorf("expected no details for plain errors, got %v", resp.Details)
	}
}
