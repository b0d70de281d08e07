package errortypes

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := errors.New("disk full")
	err := DatabaseError(cause, "failed to append row")

	if !errors.Is(err, cause) {
		t.Errorf("expected errors.Is to find the cause")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected errors.As to extract *AppError")
	}
	if appErr.Type != ErrorTypeDatabase {
		t.Errorf("expected type %q, got %q", ErrorTypeDatabase, appErr.Type)
	}
	if want := "failed to append row: disk full"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"embedding error", EmbeddingError(errors.New("no vector"), "probe failed"), ErrorTypeEmbedding},
		{"config error", ConfigError(errors.New("missing key"), "bad config"), ErrorTypeConfig},
		{"validation error", ValidationError(errors.New("empty id"), "bad request"), ErrorTypeValidation},
		{"api error", APIError(errors.New("503"), "upstream down"), ErrorTypeAPI},
		{"wrapped deeper", fmt.Errorf("outer: %w", DatabaseError(errors.New("locked"), "insert")), ErrorTypeDatabase},
		{"plain error", errors.New("anonymous"), ErrorTypeInternal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := TypeOf(test.err); got != test.expected {
				t.Errorf("TypeOf() = %q, want %q", got, test.expected)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	err := EmbeddingError(errors.New("empty vector"), "embedding unavailable")
	if !IsType(err, ErrorTypeEmbedding) {
		t.Errorf("expected IsType to match embedding class")
	}
	if IsType(err, ErrorTypeDatabase) {
		t.Errorf("did not expect IsType to match database class")
	}
	if IsType(errors.New("plain"), ErrorTypeEmbedding) {
		t.Errorf("plain errors should not match any class")
	}
}

func TestWithFields(t *testing.T) {
	err := DatabaseError(errors.New("locked"), "insert failed").
		WithField("table", "memory_items").
		WithFields(map[string]interface{}{"rows": 3})

	if err.Fields["table"] != "memory_items" {
		t.Errorf("expected table field to be set")
	}
	if err.Fields["rows"] != 3 {
		t.Errorf("expected rows field to be set")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogError(logger, DatabaseError(errors.New("locked"), "insert failed").WithField("id", "abc"))

	out := buf.String()
	if !strings.Contains(out, "insert failed") {
		t.Errorf("expected log output to contain the message, got %q", out)
	}
	if !strings.Contains(out, "type=database") {
		t.Errorf("expected log output to contain the error class, got %q", out)
	}
	if !strings.Contains(out, "id=abc") {
		t.Errorf("expected log output to contain context fields, got %q", out)
	}

	buf.Reset()
	LogError(logger, errors.New("plain failure"))
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("expected plain errors to be logged as-is")
	}
}
