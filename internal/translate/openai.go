package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider asks a chat model for a plain translation.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model}
}

// NewOpenAIProviderWithConfig allows a custom base URL.
func NewOpenAIProviderWithConfig(cfg openai.ClientConfig, model string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: Prompt(text, from, to),
			},
		},
		MaxCompletionTokens: 500,
		Temperature:         0.2,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return SanitizeAIText(resp.Choices[0].Message.Content), nil
}

var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"ca": "Catalan",
	"pt": "Portuguese",
	"fr": "French",
	"de": "German",
	"it": "Italian",
}

// LanguageName maps an ISO 639-1 code to an English name, or returns the
// code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// Prompt is the instruction shared by the language-model providers.
func Prompt(text, from, to string) string {
	return fmt.Sprintf(`Translate the following %s newspaper headline to %s.
Keep the meaning and tone of the original.
Reply with the translation only, without quotes, notes or comments.

%s`, LanguageName(from), LanguageName(to), text)
}
