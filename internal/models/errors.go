package models

import (
	"errors"
	"fmt"
)

// ValidationError reports a write that violates a uniqueness, foreign-key, or
// range constraint. The write it reports is never partially applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError reports a reference to a task, pattern, or skill that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// UnavailableError reports that the store or the text-generation service was
// unreachable or timed out. Retryable on the next invocation.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// MalformedArtifactError reports that the text-generation service returned
// content that fails the expected structure. Not retried with the same input;
// surfaced for operator review.
type MalformedArtifactError struct {
	Reason string
}

func (e *MalformedArtifactError) Error() string {
	return "malformed artifact: " + e.Reason
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsUnavailable reports whether err is an UnavailableError
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsMalformedArtifact reports whether err is a MalformedArtifactError
func IsMalformedArtifact(err error) bool {
	var me *MalformedArtifactError
	return errors.As(err, &me)
}
