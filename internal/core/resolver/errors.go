package resolver

import (
	"fmt"
	"strings"
)

// Candidate is one possible resolution offered back to the user.
type Candidate struct {
	ID    string
	Label string
}

// AmbiguousEntityError means several values matched and the user must pick
// one. Callers surface it as a clarifying question, never auto-resolve it.
type AmbiguousEntityError struct {
	Kind       string
	Input      string
	Candidates []Candidate
}

func (e *AmbiguousEntityError) Error() string {
	labels := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		labels[i] = c.Label
	}
	return fmt.Sprintf("ambiguous %s %q: candidates [%s]", e.Kind, e.Input, strings.Join(labels, ", "))
}

// UnresolvedEntityError means the reference could not be matched at all.
// Callers surface a clarification request, never a silent empty result.
type UnresolvedEntityError struct {
	Kind  string
	Input string
}

func (e *UnresolvedEntityError) Error() string {
	return fmt.Sprintf("unresolved %s: %q", e.Kind, e.Input)
}
