// Package summarizer condenses session text before it is stored as
// context.
package summarizer

const (
	// DefaultMaxSummaryLength is the summary size used when the
	// configuration does not set one.
	DefaultMaxSummaryLength = 500
)

// Summarizer defines the interface for condensing text content.
type Summarizer interface {
	// Summarize takes a text input and returns a condensed summary.
	Summarize(text string) (string, error)

	// Initialize sets up the summarizer with any required configuration.
	Initialize() error
}
