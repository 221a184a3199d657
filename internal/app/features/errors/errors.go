// Package errors writes the JSON error bodies every feature shares and
// serves the router's not-found and method-not-allowed fallbacks.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Step    string `json:"step,omitempty"`
	// WorkspaceID is set when a workflow stopped after creating a workspace.
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// Write maps err to a status and JSON body. Server-side failures are
// logged; client mistakes are not.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	b := Body{Error: Code(err), Message: err.Error()}

	var ve *apperr.ValidationError
	if stderrors.As(err, &ve) {
		b.Field = ve.Field
	}
	var pe *apperr.PartialError
	if stderrors.As(err, &pe) {
		b.Step = string(pe.Step)
		b.WorkspaceID = pe.WorkspaceID
	}
	if status >= 500 && log != nil {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	JSON(w, status, b)
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, Body{Error: "not_found", Message: "no route for " + r.URL.Path})
}

// MethodNotAllowed is the router fallback for a known path with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusMethodNotAllowed, Body{Error: "method_not_allowed", Message: r.Method + " not allowed"})
}

// Code maps err to the short identifier sent as Body.Error.
func Code(err error) string {
	switch {
	case stderrors.Is(err, apperr.ErrValidation):
		return "validation"
	case stderrors.Is(err, apperr.ErrNotConfirmed):
		return "not_confirmed"
	case stderrors.Is(err, apperr.ErrSignedOut):
		return "signed_out"
	case stderrors.Is(err, apperr.ErrNotAuthor):
		return "not_author"
	case stderrors.Is(err, apperr.ErrInvalidInvite):
		return "invalid_invite"
	case stderrors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case stderrors.Is(err, apperr.ErrAlreadyMember):
		return "already_member"
	case stderrors.Is(err, apperr.ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}
