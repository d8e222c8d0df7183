// Package gemini exposes Google's Gemini models as a translation provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/opinions/internal/translate"
)

const DefaultModel = "gemini-1.5-flash"

var errNoAnswer = errors.New("no response from Gemini")

type Provider struct {
	client *genai.Client
	model  string
}

func NewProvider(ctx context.Context, apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY: %w", translate.ErrMissingKey)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) Translate(ctx context.Context, text, from, to string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.Text(translate.Prompt(text, from, to)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errNoAnswer
	}

	return parseAnswer(text, resp.Candidates[0].Content.Parts)
}

// parseAnswer joins the text parts of a candidate and cleans it. An answer
// identical to the input means the model echoed instead of translating.
func parseAnswer(input string, parts []genai.Part) (string, error) {
	var b strings.Builder
	for _, part := range parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	answer := translate.SanitizeAIText(b.String())
	if answer == "" {
		return "", errNoAnswer
	}
	if strings.EqualFold(answer, strings.TrimSpace(input)) {
		return "", fmt.Errorf("gemini echoed the input untranslated")
	}
	return answer, nil
}
