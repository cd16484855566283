// Package executor is the boundary to the datastores. It runs plans and
// returns raw rows; pooling and retry policy belong to the drivers, not here.
// Failures propagate wrapped with question context, never masked as empty
// results.
package executor

import (
	"context"
	"fmt"

	"github.com/ludapartners/luda-mind/internal/core/pipeline"
)

// Executor runs a resolved plan and returns raw rows.
type Executor interface {
	Execute(ctx context.Context, plan *pipeline.Plan) ([]map[string]interface{}, error)
}

// ExecutionError wraps a datastore failure with the question it belongs to.
type ExecutionError struct {
	Question string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed for %q: %v", e.Question, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
