package formflow

import (
	"fmt"
	"strings"

	"github.com/opsfabric/premise/pkg/serrors"
)

var (
	ErrFetchFailed      = serrors.NewError("FORMFLOW_FETCH_FAILED", "failed to fetch location options", "Formflow.FetchFailed")
	ErrValidationFailed = serrors.NewError("FORMFLOW_VALIDATION_FAILED", "validation failed", "Formflow.ValidationFailed")
	ErrSubmissionFailed = serrors.NewError("FORMFLOW_SUBMISSION_FAILED", "the backend rejected the submission", "Formflow.SubmissionFailed")
)

// FetchError reports a failed option-list fetch. The affected cache entry is
// left Unloaded so the caller can offer a retry; sibling entries are untouched.
type FetchError struct {
	Request FetchRequest
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s options for parent %s: %v", e.Request.Level, e.Request.ParentID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError carries every violated rule. It is never sent to the backend.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// SubmissionError preserves the backend's message verbatim; Message falls back
// to a generic text when the backend provided none. The form snapshot is left
// unchanged so no work is lost.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return "submission rejected: " + e.Message
	}
	return "submission rejected by the backend"
}

func (e *SubmissionError) Unwrap() error { return e.Err }
