package engine

import (
	"errors"
	"fmt"
)

// ErrNoScorer is returned internally when the semantic backend is requested
// but no scorer was injected. It triggers the recorded lexical fallback; it
// never surfaces to callers.
var ErrNoScorer = errors.New("semantic backend requested but no scorer configured")

// ScorerError reports a scorer that returned the wrong number of scores.
type ScorerError struct {
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *ScorerError) Error() string {
	return fmt.Sprintf("scorer error: expected %d scores, got %d", e.Expected, e.Got)
}
