package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const assistantInstruction = "You are a helpful study assistant. Provide concise, practical advice about studying, time management, and maintaining focus. Keep responses friendly and encouraging."

// AssistantService proxies study questions to the Gemini completion
// API with a fixed instruction, temperature, and output budget.
type AssistantService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewAssistantService(apiKey string, concurrentReqs, maxOutputTokens int) (*AssistantService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(int32(maxOutputTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantInstruction)},
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &AssistantService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *AssistantService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *AssistantService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *AssistantService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Ask forwards the user's message and returns the first completion's
// text. Any upstream failure surfaces as an UpstreamError so the
// caller never crashes on a bad API day.
func (s *AssistantService) Ask(ctx context.Context, message string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", &UpstreamError{Message: "Failed to get AI response"}
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(message))
	if err != nil {
		return "", &UpstreamError{Message: "Failed to get AI response"}
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", &UpstreamError{Message: "Failed to get AI response"}
	}

	return reply, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
