package models

import "fmt"

// FailureReason classifies why a write operation did not commit
type FailureReason string

const (
	ReasonValidation  FailureReason = "validation"
	ReasonConstraint  FailureReason = "constraint"
	ReasonReferential FailureReason = "referential"
	ReasonNotFound    FailureReason = "not_found"
	ReasonUnavailable FailureReason = "unavailable"
	ReasonInternal    FailureReason = "internal"
)

// Result is returned by every writer and resolver operation.
// Failures are reported here and never as a panic or a raw driver error.
type Result struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Reason       FailureReason `json:"reason,omitempty"`
	ID           int64         `json:"id,omitempty"`
	RowsAffected int64         `json:"rows_affected,omitempty"`
}

// Succeeded builds a success result
func Succeeded(message string, id int64) Result {
	return Result{Success: true, Message: message, ID: id}
}

// Failed builds a failure result
func Failed(reason FailureReason, message string) Result {
	return Result{Success: false, Reason: reason, Message: message}
}

// Err converts a failed result into an error, nil on success
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &ResultError{Reason: r.Reason, Message: r.Message}
}

// ResultError is the error form of a failed Result
type ResultError struct {
	Reason  FailureReason
	Message string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}
