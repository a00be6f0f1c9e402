package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"textgenai/internal/core"
	"textgenai/internal/models"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate sends the prompt with any prior turns and returns the full
// response text. An empty or safety-filtered candidate yields "".
func (g *GeminiLLM) Generate(ctx context.Context, history []models.ChatTurn, prompt string) (string, error) {
	cs := g.startChat(history)

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return extractText(resp), nil
}

// GenerateStream relays response chunks to onChunk as they arrive.
// Returning an error from onChunk, or cancelling ctx, stops iteration;
// chunks already delivered are not rolled back.
func (g *GeminiLLM) GenerateStream(ctx context.Context, history []models.ChatTurn, prompt string, onChunk func(string) error) error {
	cs := g.startChat(history)

	iter := cs.SendMessageStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				// Caller went away mid-stream; not a provider failure.
				return ctx.Err()
			}
			return fmt.Errorf("gemini stream: %w", err)
		}
		if chunk := extractText(resp); chunk != "" {
			if err := onChunk(chunk); err != nil {
				return err
			}
		}
	}
}

func (g *GeminiLLM) startChat(history []models.ChatTurn) *genai.ChatSession {
	m := g.client.GenerativeModel(g.modelName)
	cs := m.StartChat()
	for _, turn := range history {
		role := turn.Role
		if role != "user" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return cs
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.TextGenerator = (*GeminiLLM)(nil)
