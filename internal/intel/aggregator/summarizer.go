package aggregator

import "context"

// Summarizer turns labeled source text into a Summary.
type Summarizer interface {
	Summarize(ctx context.Context, labeledText string, format OutputFormat) (*Summary, error)
}

// StubSummarizer always produces StubNarrative. It performs no I/O.
type StubSummarizer struct{}

func (StubSummarizer) Summarize(_ context.Context, labeledText string, format OutputFormat) (*Summary, error) {
	return NewSummary(StubNarrative, labeledText, format), nil
}
