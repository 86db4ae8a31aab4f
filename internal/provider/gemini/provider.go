package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
)

// FallbackReply is returned when the model produces no usable candidate,
// for example when a safety filter blocked the output.
const FallbackReply = "I'm sorry, I couldn't process your request."

// Provider implements provider.ChatProvider using the Gemini API
type Provider struct {
	client   *Client
	helpline string
}

func NewProvider(config Config, helpline string) *Provider {
	return &Provider{
		client:   NewClient(config),
		helpline: helpline,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Complete(ctx context.Context, messages []provider.Message, language provider.Language) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}

	req := GenerateRequest{
		Contents:         toContents(messages),
		GenerationConfig: defaultGenerationConfig(),
		SafetySettings:   defaultSafetySettings(),
		SystemInstruction: &Content{
			Role:  "system",
			Parts: []Part{{Text: systemPrompt(language, p.helpline)}},
		},
	}

	resp, err := p.client.GenerateContent(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return firstText(resp), nil
}

// toContents maps conversation roles to Gemini roles: assistant turns are
// "model", everything else is "user".
func toContents(messages []provider.Message) []Content {
	contents := make([]Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == provider.RoleAssistant {
			role = "model"
		}
		contents = append(contents, Content{
			Role:  role,
			Parts: []Part{{Text: m.Content}},
		})
	}
	return contents
}

func firstText(resp *GenerateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return FallbackReply
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || strings.TrimSpace(parts[0].Text) == "" {
		return FallbackReply
	}
	return parts[0].Text
}

var _ provider.ChatProvider = (*Provider)(nil)
