package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/config"
)

func TestNewChatProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  bool
	}{
		{"mock", config.Config{ChatProvider: "mock"}, "mock", false},
		{"gemini", config.Config{ChatProvider: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-pro", HelplineNumber: "14416"}, "gemini", false},
		{"unknown", config.Config{ChatProvider: "openai"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newChatProvider(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}
