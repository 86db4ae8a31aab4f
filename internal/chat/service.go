// Package chat runs one companion chat turn, intercepting crisis messages
// before they reach the language model.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/crisis"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/domain"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/escalation"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
)

// DefaultSubject identifies chat-originated alerts when the client sent no
// session id.
const DefaultSubject = "student-ai-chat"

// Escalator raises a crisis alert.
type Escalator interface {
	Trigger(ctx context.Context, subjectID, message string) (escalation.Alert, error)
}

type Request struct {
	SessionID string             `json:"session_id"`
	Messages  []provider.Message `json:"messages"`
	Language  string             `json:"language"`
}

type Reply struct {
	Message   string     `json:"message"`
	Emergency bool       `json:"emergency"`
	AlertID   *uuid.UUID `json:"alert_id,omitempty"`
}

type Service struct {
	detector  *crisis.Detector
	escalator Escalator
	provider  provider.ChatProvider
	logger    *slog.Logger
}

func NewService(detector *crisis.Detector, escalator Escalator, chatProvider provider.ChatProvider, logger *slog.Logger) *Service {
	return &Service{
		detector:  detector,
		escalator: escalator,
		provider:  chatProvider,
		logger:    logger,
	}
}

// Respond answers the latest user turn. When it contains a risk phrase the
// canned safety response is returned and an alert is triggered; the model is
// never called for that turn, and a failed alert broadcast does not change
// the reply.
func (s *Service) Respond(ctx context.Context, req Request) (*Reply, error) {
	latest, err := lastUserMessage(req.Messages)
	if err != nil {
		return nil, err
	}

	if s.detector.Scan(latest) {
		return s.escalate(ctx, req.SessionID, latest), nil
	}

	language := provider.ParseLanguage(req.Language)
	text, err := s.provider.Complete(ctx, req.Messages, language)
	if err != nil {
		s.logger.Error("chat completion failed",
			"provider", s.provider.Name(),
			"session_id", req.SessionID,
			"error", err,
		)
		appErr := domain.ErrChatUnavailable.WithError(err)
		appErr.Message = fmt.Sprintf("%s at %s.", appErr.Message, s.detector.Helpline())
		return nil, appErr
	}

	return &Reply{Message: text}, nil
}

func (s *Service) escalate(ctx context.Context, sessionID, text string) *Reply {
	subject := strings.TrimSpace(sessionID)
	if subject == "" {
		subject = DefaultSubject
	}

	reply := &Reply{
		Message:   s.detector.SafetyResponse(),
		Emergency: true,
	}

	alert, err := s.escalator.Trigger(ctx, subject, "Crisis detected: "+text)
	if err != nil {
		s.logger.Error("crisis alert broadcast failed, safety response still delivered",
			"alert_id", alert.ID,
			"subject_id", subject,
			"error", err,
		)
	}
	if alert.ID != uuid.Nil {
		id := alert.ID
		reply.AlertID = &id
	}

	return reply
}

func lastUserMessage(messages []provider.Message) (string, error) {
	if len(messages) == 0 {
		return "", domain.ErrInvalidConversation
	}
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != provider.RoleUser && m.Role != provider.RoleAssistant {
			return "", domain.ErrInvalidConversation.WithError(fmt.Errorf("unknown role %q", m.Role))
		}
	}
	last := messages[len(messages)-1]
	if last.Role != provider.RoleUser || strings.TrimSpace(last.Content) == "" {
		return "", domain.ErrInvalidConversation
	}
	return last.Content, nil
}
