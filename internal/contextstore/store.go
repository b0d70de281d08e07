// Package contextstore persists summarized session context and serves
// similarity lookups over it. It is independent of the long-term memory
// log: entries here are keyed, mutable, and deletable.
package contextstore

import (
	"time"
)

// Entry is one stored context row as returned by Search, together with
// the cosine similarity the query scored against it.
type Entry struct {
	ID          string
	SummaryText string
	Timestamp   time.Time
	Score       float64
}

// ContextStore defines the interface for storing and retrieving
// summarized session context.
type ContextStore interface {
	// Initialize opens the store at the given database path, creating
	// the schema if needed.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// Store inserts or overwrites the context entry with the given ID.
	Store(id string, summaryText string, embedding []byte, timestamp time.Time) error

	// Search returns the entries most similar to the query embedding,
	// ranked by descending score and truncated to limit.
	Search(queryEmbedding []float32, limit int) ([]Entry, error)

	// Delete removes the entry with the given ID. It reports whether an
	// entry was actually removed.
	Delete(id string) (bool, error)

	// Replace overwrites the text and embedding of an existing entry,
	// keeping its ID. It reports whether the entry existed.
	Replace(id string, summaryText string, embedding []byte, timestamp time.Time) (bool, error)

	// Clear removes every entry from the store.
	Clear() error
}
