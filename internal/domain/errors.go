package domain

import (
	"errors"
	"fmt"
	"time"
)

// Training lifecycle errors surfaced to callers.
var (
	// ErrTrainingInProgress rejects a second train() call while a run is
	// already in flight.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrTrainingTimeout marks a bounded wait that expired before the
	// in-flight run finished. Distinct from "still training".
	ErrTrainingTimeout = errors.New("timed out waiting for training to complete")

	// ErrTrainingFailed marks a run that finished without ever reaching
	// the trained state.
	ErrTrainingFailed = errors.New("training failed to converge")

	// ErrDatasetUnavailable marks a supplementary-dataset fetch failure.
	// Callers proceed on the bundled dataset.
	ErrDatasetUnavailable = errors.New("supplementary dataset unavailable")
)

// Error codes for structured logging and audit trails.
const (
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeTrainingTimeout    = "TRAINING_TIMEOUT"
	ErrCodeTrainingFailed     = "TRAINING_FAILED"
	ErrCodeInputMalformed     = "INPUT_MALFORMED"
	ErrCodeDatasetFetch       = "DATASET_FETCH_FAILED"
)

// ModelError wraps a sub-model failure with the model name and an error
// code for audit trails. The ensemble recovers these locally; they never
// abort an assessment.
type ModelError struct {
	Code      string    `json:"code"`
	Model     string    `json:"model"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Model, e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a UTC timestamp.
func NewModelError(code, model, message string, cause error) *ModelError {
	return &ModelError{
		Code:      code,
		Model:     model,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Err:       cause,
	}
}
