package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gifia/fraud-intel/pkg/gemini"
)

// GeminiProvider tries an ordered list of Gemini models and returns the
// first non-empty completion. A rate-limit classification on any model
// abandons the remaining ones immediately.
type GeminiProvider struct {
	client          gemini.Client
	models          []string
	maxOutputTokens int
}

// NewGeminiProvider creates the primary provider. models must be in
// preference order.
func NewGeminiProvider(client gemini.Client, models []string, maxOutputTokens int) *GeminiProvider {
	return &GeminiProvider{
		client:          client,
		models:          models,
		maxOutputTokens: maxOutputTokens,
	}
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Analyze implements Provider.
func (p *GeminiProvider) Analyze(ctx context.Context, prompt string) (string, error) {
	temp := 0.3
	req := gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: prompt}}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     &temp,
			MaxOutputTokens: p.maxOutputTokens,
		},
	}

	var lastErr error
	for _, model := range p.models {
		resp, err := p.client.GenerateContent(ctx, model, req)
		if err != nil {
			kind := classifyGemini(err)
			zap.L().Warn("llm: gemini model failed",
				zap.String("model", model),
				zap.String("kind", kind.String()),
				zap.Error(err),
			)
			lastErr = &ProviderError{Provider: "gemini", Kind: kind, Err: err}
			if kind == KindRateLimited {
				return "", lastErr
			}
			continue
		}

		text := strings.TrimSpace(resp.Text())
		if text != "" {
			return text, nil
		}
		lastErr = &ProviderError{
			Provider: "gemini",
			Kind:     KindTransient,
			Err:      eris.Errorf("llm: model %s returned empty completion", model),
		}
	}

	if lastErr == nil {
		lastErr = &ProviderError{
			Provider: "gemini",
			Kind:     KindFatal,
			Err:      eris.New("llm: no gemini models configured"),
		}
	}
	return "", lastErr
}
