package mock

import (
	"context"
	"crypto/sha256"
	"errors"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
)

var ErrEmptyConversation = errors.New("conversation has no messages")

var replies = map[provider.Language][]string{
	provider.LanguageEnglish: {
		"I hear you, that sounds really challenging. Would you like to try a quick 2-minute breathing exercise together?",
		"You're not alone in this. What has been weighing on you the most today?",
		"Thank you for sharing that with me. A short walk or a glass of water can help reset. Want a few study-break ideas?",
	},
	provider.LanguageHindi: {
		"मैं आपकी बात समझ रहा हूं। क्या हम साथ में दो मिनट की सांस की एक्सरसाइज करें?",
		"आप अकेले नहीं हैं। आज आपको सबसे ज्यादा क्या परेशान कर रहा है?",
	},
	provider.LanguageUrdu: {
		"میں آپ کی بات سمجھ رہا ہوں۔ کیا ہم مل کر دو منٹ کی سانس کی مشق کریں؟",
		"آپ اکیلے نہیں ہیں۔ آج آپ کو سب سے زیادہ کیا پریشان کر رہا ہے؟",
	},
}

// Provider implements provider.ChatProvider for development and tests. The
// reply is chosen deterministically from a hash of the latest message.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "mock"
}

func (p *Provider) Complete(ctx context.Context, messages []provider.Message, language provider.Language) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", ErrEmptyConversation
	}

	options, ok := replies[language]
	if !ok {
		options = replies[provider.LanguageEnglish]
	}

	hash := sha256.Sum256([]byte(messages[len(messages)-1].Content))
	return options[int(hash[0])%len(options)], nil
}

var _ provider.ChatProvider = (*Provider)(nil)
