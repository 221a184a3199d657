// Package apperr is the error taxonomy shared by the workflows and the
// HTTP adapter. Callers test for a kind with errors.Is and recover details
// with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
)

var (
	// ErrNotFound reports a point read of an absent id.
	ErrNotFound = docstore.ErrNotFound

	// ErrTransport reports a failed remote read, write, or listen.
	ErrTransport = docstore.ErrTransport

	ErrInvalidInvite = errors.New("invite code is invalid or expired")
	ErrAlreadyMember = errors.New("user is already a member of this workspace")
	ErrValidation    = errors.New("validation failed")
	ErrNotAuthor     = errors.New("only the author can modify this message")
	ErrNotConfirmed  = errors.New("deletion was not confirmed")
	ErrSignedOut     = errors.New("no user is signed in")
)

// ValidationError names the input that was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for &ValidationError{field, reason}.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Step names a point inside a multi-write workflow.
type Step string

const (
	StepWorkspace  Step = "workspace"
	StepMembership Step = "membership"
	StepMemberIDs  Step = "member_ids"
)

// PartialError reports a workflow that failed after some of its writes
// landed. Completed writes are not rolled back; WorkspaceID identifies
// what was left behind.
type PartialError struct {
	Op          string
	Step        Step
	WorkspaceID string
	Err         error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s: failed at %s (workspace %s): %v", e.Op, e.Step, e.WorkspaceID, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// HTTPStatus maps err onto a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, ErrSignedOut):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthor):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidInvite), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	case errors.Is(err, ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
