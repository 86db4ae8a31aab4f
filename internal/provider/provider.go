package provider

import (
	"context"
	"strings"
)

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language selects the companion's reply language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageUrdu    Language = "ur"
)

// ParseLanguage maps a request tag to a supported language, falling back to
// English for anything unknown.
func ParseLanguage(tag string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(tag))) {
	case LanguageHindi:
		return LanguageHindi
	case LanguageUrdu:
		return LanguageUrdu
	default:
		return LanguageEnglish
	}
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatProvider produces one assistant reply for a running conversation.
type ChatProvider interface {
	// Complete returns the assistant's next message. messages is ordered
	// oldest first and ends with the student's latest turn.
	Complete(ctx context.Context, messages []Message, language Language) (string, error)

	// Name identifies the provider in logs and readiness output.
	Name() string
}
