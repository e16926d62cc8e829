// Package businessflow contains the core business logic and use cases for the deal pipeline
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Pipeline flow-control conditions. These are values, not failures: an
	// empty market day aborts this invocation and waits for the next run.
	ErrNoOffers     = errors.New("no offers found for the search window")
	ErrNoCandidates = errors.New("no candidates passed cooldown and discount filters")
	ErrNoReviewJob  = errors.New("no active review job")

	// Publication errors
	ErrPublishChannelDisabled = errors.New("publish channel is disabled")

	// Input errors
	ErrEmptySample = errors.New("empty sample")
)

// BusinessError represents a structured business logic error
type BusinessError struct {
	Code    string
	Message string
	Cause   error
}

func (e *BusinessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Cause
}

// NewBusinessError creates a new business error with a code, message, and optional cause
func NewBusinessError(code, message string, cause error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
