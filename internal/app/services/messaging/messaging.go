// Package messaging implements sending, editing, and deleting messages.
// Authorship is enforced here; the message store does not check it.
package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/enidea/slack-clone/internal/app/store/docstore"
	messagestore "github.com/enidea/slack-clone/internal/app/store/messages"
	"github.com/enidea/slack-clone/internal/app/system/apperr"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.uber.org/zap"
)

type Service struct {
	messages *messagestore.Store
	logger   *zap.Logger
	now      func() time.Time
}

func New(gw docstore.Gateway, logger *zap.Logger) *Service {
	return NewWithClock(gw, logger, func() time.Time { return time.Now().UTC() })
}

// NewWithClock is New with an explicit time source.
func NewWithClock(gw docstore.Gateway, logger *zap.Logger, now func() time.Time) *Service {
	return &Service{
		messages: messagestore.New(gw).WithClock(now),
		logger:   logger,
		now:      now,
	}
}

// SendResult reports whether Send wrote anything.
type SendResult struct {
	MessageID string `json:"message_id,omitempty"`
	Sent      bool   `json:"sent"`
}

// Send posts text to channelID as userID. Text is stored trimmed and
// otherwise exactly as typed. Blank text or a missing id is a silent
// no-op: Sent is false and the error is nil.
func (s *Service) Send(ctx context.Context, userID, channelID, text string) (SendResult, error) {
	if userID == "" || channelID == "" {
		return SendResult{}, nil
	}
	clean := strings.TrimSpace(text)
	if clean == "" {
		return SendResult{}, nil
	}

	id, err := s.messages.Post(ctx, messagestore.NewMessage(userID, channelID, clean, s.now()))
	if err != nil {
		return SendResult{}, fmt.Errorf("send message: %w", err)
	}
	s.logger.Debug("message sent",
		zap.String("message_id", id),
		zap.String("channel_id", channelID))
	return SendResult{MessageID: id, Sent: true}, nil
}

// Edit replaces the text of messageID. Only the author may edit. Blank
// text, or text equal to what is stored, writes nothing and returns false.
func (s *Service) Edit(ctx context.Context, actorID, messageID, newText string) (bool, error) {
	m, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return false, err
	}
	if !CanModify(actorID, m) {
		return false, apperr.ErrNotAuthor
	}

	clean := strings.TrimSpace(newText)
	if clean == "" || clean == m.Text {
		return false, nil
	}

	if err := s.messages.Update(ctx, messageID, clean); err != nil {
		return false, fmt.Errorf("edit message: %w", err)
	}
	return true, nil
}

// Delete removes messageID permanently. The caller must pass
// confirmed=true, and only the author may delete.
func (s *Service) Delete(ctx context.Context, actorID, messageID string, confirmed bool) error {
	if !confirmed {
		return apperr.ErrNotConfirmed
	}
	m, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if !CanModify(actorID, m) {
		return apperr.ErrNotAuthor
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	s.logger.Debug("message deleted", zap.String("message_id", messageID))
	return nil
}

// CanModify reports whether actorID may edit or delete m.
func CanModify(actorID string, m models.Message) bool {
	return actorID != "" && actorID == m.UserID
}

// Key is a key press as seen by the composer.
type Key struct {
	Name  string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// IsSubmitKey reports whether k sends the draft. Ctrl+Enter or Cmd+Enter
// submits; plain Enter inserts a newline.
func IsSubmitKey(k Key) bool {
	return strings.EqualFold(k.Name, "Enter") && (k.Ctrl || k.Meta)
}
