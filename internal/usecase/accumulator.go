package usecase

import "strings"

// transcriptAccumulator holds dictated fragments in chronological order.
// It is not safe for concurrent use; the session contract allows at most
// one caller per session.
type transcriptAccumulator struct {
	parts []string
}

func newTranscriptAccumulator() *transcriptAccumulator {
	return &transcriptAccumulator{}
}

// Add appends text if it is non-empty after trimming. This is the only
// mutation path for the accumulated parts.
func (a *transcriptAccumulator) Add(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	a.parts = append(a.parts, trimmed)
}

// Finalize joins all parts with single spaces in insertion order. It does
// not clear the parts, so repeated calls yield the same result.
func (a *transcriptAccumulator) Finalize() string {
	return strings.Join(a.parts, " ")
}

func (a *transcriptAccumulator) Len() int {
	return len(a.parts)
}

func (a *transcriptAccumulator) WordCount() int {
	count := 0
	for _, part := range a.parts {
		count += len(strings.Fields(part))
	}
	return count
}

// Parts returns a copy for status reporting.
func (a *transcriptAccumulator) Parts() []string {
	out := make([]string, len(a.parts))
	copy(out, a.parts)
	return out
}
