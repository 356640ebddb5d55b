package finance

import (
	"context"
)

// Prompt is the question shown to the user before an operation runs.
type Prompt struct {
	Message string `json:"message" example:"Do you really want to delete the entry \"Salary\"?"`
}

// Confirmable is an operation that only runs once the user confirmed
// its prompt.
type Confirmable[T any] struct {
	Prompt   Prompt
	Continue func(context.Context) (T, error)
}

// Confirm runs the operation.
func (c Confirmable[T]) Confirm(ctx context.Context) (T, error) {
	return c.Continue(ctx)
}
