package summarizer

import (
	"strings"
	"testing"
)

func TestNewBasicSummarizerDefaults(t *testing.T) {
	tests := []struct {
		name          string
		maxSummaryLen int
		want          int
	}{
		{"positive value", 150, 150},
		{"zero value", 0, 200},
		{"negative value", -50, 200},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := NewBasicSummarizer(test.maxSummaryLen)
			if got.maxSummaryLen != test.want {
				t.Errorf("NewBasicSummarizer(%v).maxSummaryLen = %v, want %v",
					test.maxSummaryLen, got.maxSummaryLen, test.want)
			}
		})
	}
}

func TestBasicSummarizerInitialize(t *testing.T) {
	if err := NewBasicSummarizer(100).Initialize(); err != nil {
		t.Errorf("Initialize() error = %v, want nil", err)
	}
}

func TestBasicSummarizerSummarize(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		maxSummaryLen int
		want          string
		wantContains  string
	}{
		{
			name:          "short text passes through",
			text:          "This is a short text.",
			maxSummaryLen: 100,
			want:          "This is a short text.",
		},
		{
			name:          "cuts at period",
			text:          "This is the first sentence. This is the second sentence that should be truncated.",
			maxSummaryLen: 30,
			want:          "This is the first sentence.",
		},
		{
			name:          "cuts at question mark",
			text:          "Is this the first sentence? This is the second sentence that should be truncated.",
			maxSummaryLen: 30,
			want:          "Is this the first sentence?",
		},
		{
			name:          "cuts at exclamation mark",
			text:          "This is the first sentence! This is the second sentence that should be truncated.",
			maxSummaryLen: 30,
			want:          "This is the first sentence!",
		},
		{
			name:          "falls back to word boundary",
			text:          "This is a long text without any sentence boundary that should be truncated at a word boundary",
			maxSummaryLen: 30,
			wantContains:  ellipsis,
		},
		{
			name:          "falls back to hard cut",
			text:          "ThisIsALongTextWithoutAnySpacesOrSentenceBoundaries",
			maxSummaryLen: 10,
			wantContains:  ellipsis,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NewBasicSummarizer(test.maxSummaryLen).Summarize(test.text)
			if err != nil {
				t.Fatalf("Summarize() error = %v, want nil", err)
			}

			if test.want != "" && got != test.want {
				t.Errorf("Summarize() = %q, want %q", got, test.want)
			}
			if test.wantContains != "" && !strings.Contains(got, test.wantContains) {
				t.Errorf("Summarize() = %q, want it to contain %q", got, test.wantContains)
			}
			if len(got) > test.maxSummaryLen {
				t.Errorf("Summarize() produced %d bytes, want at most %d", len(got), test.maxSummaryLen)
			}
		})
	}
}
