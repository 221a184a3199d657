package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
)

func TestValidationError_MatchesKind(t *testing.T) {
	err := fmt.Errorf("create workspace: %w", apperr.Invalid("name", "required"))

	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatal("expected ErrValidation match")
	}
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("expected field name, got %+v", ve)
	}
}

func TestPartialError_Unwraps(t *testing.T) {
	cause := docstore.Transport("put", docstore.WorkspaceMembers, errors.New("offline"))
	err := &apperr.PartialError{Op: "create workspace", Step: apperr.StepMembership, WorkspaceID: "ws1", Err: cause}

	if !errors.Is(err, apperr.ErrTransport) {
		t.Error("expected transport cause to be reachable")
	}
	var pe *apperr.PartialError
	if !errors.As(err, &pe) || pe.Step != apperr.StepMembership || pe.WorkspaceID != "ws1" {
		t.Errorf("unexpected partial error: %+v", pe)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", apperr.Invalid("text", "empty"), http.StatusBadRequest},
		{"not confirmed", apperr.ErrNotConfirmed, http.StatusBadRequest},
		{"signed out", apperr.ErrSignedOut, http.StatusUnauthorized},
		{"not author", apperr.ErrNotAuthor, http.StatusForbidden},
		{"invalid invite", apperr.ErrInvalidInvite, http.StatusNotFound},
		{"not found", fmt.Errorf("message: %w", docstore.ErrNotFound), http.StatusNotFound},
		{"already member", apperr.ErrAlreadyMember, http.StatusConflict},
		{"transport", docstore.Transport("get", "users", errors.New("boom")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
