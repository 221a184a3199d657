// internal/app/system/auditlog/logger.go
package auditlog

import (
	"net/http"

	"github.com/enidea/slack-clone/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Modes accepted by New.
const (
	ModeLog = "log"
	ModeOff = "off"
)

// Categories group events so they can be filtered downstream.
const (
	CategoryAuth       = "auth"
	CategoryMembership = "membership"
	CategoryMessage    = "message"
)

// Event types.
const (
	EventSignIn           = "sign_in"
	EventSignInCancelled  = "sign_in_cancelled"
	EventSignInFailed     = "sign_in_failed"
	EventSignOut          = "sign_out"
	EventWorkspaceCreated = "workspace_created"
	EventInviteGenerated  = "invite_generated"
	EventWorkspaceJoined  = "workspace_joined"
	EventJoinFailed       = "join_failed"
	EventMessageDeleted   = "message_deleted"
)

// Event is one audit record.
type Event struct {
	Category      string
	EventType     string
	UserID        string
	WorkspaceID   string
	IP            string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Logger writes audit events as structured zap entries tagged audit=true.
// A nil *Logger drops everything, so handlers built in tests can skip it.
type Logger struct {
	zapLog *zap.Logger
	mode   string
}

// New creates an audit Logger. Any mode other than ModeOff logs.
func New(zapLog *zap.Logger, mode string) *Logger {
	if mode == "" {
		mode = ModeLog
	}
	return &Logger{zapLog: zapLog, mode: mode}
}

// Log records event.
func (l *Logger) Log(event Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.WorkspaceID != "" {
		fields = append(fields, zap.String("workspace_id", event.WorkspaceID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Auth events

func (l *Logger) SignIn(r *http.Request, userID string) {
	l.Log(Event{Category: CategoryAuth, EventType: EventSignIn, UserID: userID, IP: ratelimit.ClientIP(r), Success: true})
}

func (l *Logger) SignInCancelled(r *http.Request) {
	l.Log(Event{Category: CategoryAuth, EventType: EventSignInCancelled, IP: ratelimit.ClientIP(r)})
}

func (l *Logger) SignInFailed(r *http.Request, reason string) {
	l.Log(Event{Category: CategoryAuth, EventType: EventSignInFailed, IP: ratelimit.ClientIP(r), FailureReason: reason})
}

func (l *Logger) SignOut(r *http.Request, userID string) {
	l.Log(Event{Category: CategoryAuth, EventType: EventSignOut, UserID: userID, IP: ratelimit.ClientIP(r), Success: true})
}

// Membership events

func (l *Logger) WorkspaceCreated(r *http.Request, userID, workspaceID string) {
	l.Log(Event{
		Category:    CategoryMembership,
		EventType:   EventWorkspaceCreated,
		UserID:      userID,
		WorkspaceID: workspaceID,
		IP:          ratelimit.ClientIP(r),
		Success:     true,
	})
}

// InviteGenerated never records the code itself; anyone reading the log
// could otherwise join.
func (l *Logger) InviteGenerated(r *http.Request, userID, workspaceID string) {
	l.Log(Event{
		Category:    CategoryMembership,
		EventType:   EventInviteGenerated,
		UserID:      userID,
		WorkspaceID: workspaceID,
		IP:          ratelimit.ClientIP(r),
		Success:     true,
	})
}

func (l *Logger) WorkspaceJoined(r *http.Request, userID, workspaceID string) {
	l.Log(Event{
		Category:    CategoryMembership,
		EventType:   EventWorkspaceJoined,
		UserID:      userID,
		WorkspaceID: workspaceID,
		IP:          ratelimit.ClientIP(r),
		Success:     true,
	})
}

func (l *Logger) JoinFailed(r *http.Request, userID, reason string) {
	l.Log(Event{
		Category:      CategoryMembership,
		EventType:     EventJoinFailed,
		UserID:        userID,
		IP:            ratelimit.ClientIP(r),
		FailureReason: reason,
	})
}

// Message events

func (l *Logger) MessageDeleted(r *http.Request, userID, messageID string) {
	l.Log(Event{
		Category:  CategoryMessage,
		EventType: EventMessageDeleted,
		UserID:    userID,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"message_id": messageID},
	})
}
