package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
)

// DeepSeekProvider is the backup generative service. DeepSeek exposes an
// OpenAI-compatible chat-completions endpoint, so the go-openai client is
// pointed at its base URL.
type DeepSeekProvider struct {
	client *openai.Client
	model  string
}

// NewDeepSeekProvider creates the backup provider. Returns nil when no
// credential is configured; the gateway treats a nil backup as absent.
func NewDeepSeekProvider(apiKey, baseURL, model string) *DeepSeekProvider {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "deepseek-chat"
	}
	return &DeepSeekProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name implements Provider.
func (p *DeepSeekProvider) Name() string { return "deepseek" }

// Analyze implements Provider. Single request, no retries.
func (p *DeepSeekProvider) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", &ProviderError{Provider: "deepseek", Kind: KindTransient, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: "deepseek",
			Kind:     KindTransient,
			Err:      eris.New("llm: deepseek returned no choices"),
		}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &ProviderError{
			Provider: "deepseek",
			Kind:     KindTransient,
			Err:      eris.New("llm: deepseek returned empty completion"),
		}
	}
	return text, nil
}
