package tools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Media describes a synthesized speech asset attached to a reply.
type Media struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Voice string `json:"voice"`
}

// SpeechSynthesizer renders reply text in a persona voice. Failures are
// treated as best effort by callers; the media field is simply omitted.
type SpeechSynthesizer interface {
	Speak(ctx context.Context, text, personaVoice string) (*Media, error)
}

// MockAvatar fabricates audio asset URLs without rendering anything.
type MockAvatar struct{}

func NewMockAvatar() *MockAvatar {
	return &MockAvatar{}
}

func (m *MockAvatar) Speak(_ context.Context, text, personaVoice string) (*Media, error) {
	if text == "" {
		return nil, fmt.Errorf("nothing to speak")
	}
	if personaVoice == "" {
		personaVoice = "neutral"
	}
	return &Media{
		Type:  "audio",
		URL:   fmt.Sprintf("https://cdn.example.com/tts/%s.mp3", uuid.NewString()),
		Voice: personaVoice,
	}, nil
}
