package synthesizer

import "fmt"

// SynthesisFailedError means the LLM output could not be validated or
// repaired. Surfaced to the user as a plain failure, never retried in a loop.
type SynthesisFailedError struct {
	Question string
	Reason   string
}

func (e *SynthesisFailedError) Error() string {
	return fmt.Sprintf("synthesis failed for %q: %s", e.Question, e.Reason)
}
