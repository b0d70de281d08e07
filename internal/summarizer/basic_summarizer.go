package summarizer

import (
	"strings"
)

const ellipsis = "..."

// BasicSummarizer truncates text to a target length, preferring to cut
// at a sentence boundary, then a word boundary, then mid-word with an
// ellipsis. It never produces output longer than the configured length.
type BasicSummarizer struct {
	maxSummaryLen int
}

// NewBasicSummarizer creates a BasicSummarizer with the given maximum
// summary length. Non-positive lengths fall back to a default of 200.
func NewBasicSummarizer(maxSummaryLen int) *BasicSummarizer {
	if maxSummaryLen <= 0 {
		maxSummaryLen = 200
	}
	return &BasicSummarizer{maxSummaryLen: maxSummaryLen}
}

// Initialize sets up the summarizer with any required configuration.
func (s *BasicSummarizer) Initialize() error {
	return nil
}

// Summarize condenses the text to at most the configured length.
func (s *BasicSummarizer) Summarize(text string) (string, error) {
	if len(text) <= s.maxSummaryLen {
		return text, nil
	}

	head := text[:s.maxSummaryLen]
	if cut := lastSentenceEnd(head); cut > 0 {
		return head[:cut+1], nil
	}

	// No sentence terminator in range; cut at the last word break,
	// leaving room for the ellipsis.
	truncateLen := s.maxSummaryLen - len(ellipsis)
	if truncateLen < 0 {
		truncateLen = 0
	}
	head = text[:truncateLen]

	if cut := strings.LastIndex(head, " "); cut > 0 {
		return text[:cut] + ellipsis, nil
	}
	return head + ellipsis, nil
}

// lastSentenceEnd returns the index of the last sentence terminator in
// s, or -1 when there is none.
func lastSentenceEnd(s string) int {
	return max(
		strings.LastIndex(s, "."),
		strings.LastIndex(s, "?"),
		strings.LastIndex(s, "!"),
	)
}
