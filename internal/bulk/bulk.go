// Package bulk applies one checklist change to many items in order.
package bulk

import (
	"fmt"
	"io"
)

// Operation represents a bulk operation configuration. Items run one at a
// time because a session is not safe for concurrent use.
type Operation struct {
	ContinueOnError bool
	// Errors receives one line per failed item; nil discards them
	Errors io.Writer
}

// Result represents the result of a bulk operation
type Result struct {
	TotalItems int
	Succeeded  int
	Failed     int
	Skipped    int
	Errors     []ItemError
}

// ItemError represents an error for a specific item
type ItemError struct {
	Item  string
	Error error
}

// ItemFunc is the function to execute for each item
type ItemFunc func(item string) error

// Execute runs fn for each item in order. Without ContinueOnError the
// first failure stops the run and the remaining items count as skipped.
func (op *Operation) Execute(items []string, fn ItemFunc) *Result {
	result := &Result{
		TotalItems: len(items),
	}

	for i, item := range items {
		if err := fn(item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ItemError{Item: item, Error: err})
			if op.Errors != nil {
				fmt.Fprintf(op.Errors, "%s: error: %v\n", item, err)
			}
			if !op.ContinueOnError {
				result.Skipped = len(items) - i - 1
				return result
			}
			continue
		}
		result.Succeeded++
	}

	return result
}

// Err summarizes the failures. A single-item run returns that item's
// error unchanged.
func (r *Result) Err() error {
	switch {
	case r.Failed == 0:
		return nil
	case r.TotalItems == 1:
		return r.Errors[0].Error
	default:
		return fmt.Errorf("%d of %d items failed", r.Failed, r.TotalItems)
	}
}

// PrintSummary prints a human-readable summary of the result
func (r *Result) PrintSummary(w io.Writer) {
	switch {
	case r.Failed == 0:
		fmt.Fprintf(w, "All %d items updated\n", r.TotalItems)
	case r.Succeeded == 0:
		fmt.Fprintf(w, "No items updated (%d failed", r.Failed)
		if r.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped", r.Skipped)
		}
		fmt.Fprintln(w, ")")
	default:
		fmt.Fprintf(w, "Partial success: %d updated, %d failed", r.Succeeded, r.Failed)
		if r.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped", r.Skipped)
		}
		fmt.Fprintf(w, " (out of %d)\n", r.TotalItems)
	}
}
