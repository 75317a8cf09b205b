package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiResponder struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
}

func NewGeminiResponder(ctx context.Context, apiKey, model string, maxOutputTokens int) (*GeminiResponder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiResponder{
		client:          client,
		model:           strings.TrimSpace(model),
		maxOutputTokens: int32(maxOutputTokens),
	}, nil
}

func (g *GeminiResponder) Respond(ctx context.Context, req Request) (Output, error) {
	contents := geminiContents(req.Conversation)
	if len(contents) == 0 {
		return Output{}, errors.New("gemini request has no conversation turns")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   replySchema(),
		MaxOutputTokens:  g.maxOutputTokens,
	}
	if instruction := strings.TrimSpace(req.SystemInstruction); instruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: instruction}}}
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Output{}, fmt.Errorf("gemini generate content: %w", err)
	}
	text := geminiText(response)
	if strings.TrimSpace(text) == "" {
		return Output{}, ErrEmptyOutput
	}
	return Output{Text: text, Model: g.model}, nil
}

func geminiContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		text := strings.TrimSpace(turn.Content)
		if text == "" {
			continue
		}
		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: text}},
		})
	}
	return contents
}

func geminiText(response *genai.GenerateContentResponse) string {
	if response == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range response.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				builder.WriteString(part.Text)
			}
		}
		if builder.Len() > 0 {
			break
		}
	}
	return builder.String()
}

func replySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"answer":  {Type: genai.TypeString},
			"emotion": {Type: genai.TypeString, Enum: []string{"feliz", "triste"}},
			"crisis":  {Type: genai.TypeBoolean},
		},
		Required: []string{"answer", "emotion", "crisis"},
	}
}
