package reasoning

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const geminiTemperature = 0.3

// GeminiProvider calls the Google Generative AI API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(geminiTemperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Class: classifyGeminiError(err), Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: errors.New("empty response")}
	}

	return fmt.Sprint(resp.Candidates[0].Content.Parts[0]), nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func classifyGeminiError(err error) FailureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return FailureRateLimited
		case apiErr.Code >= 500:
			return FailureUnavailable
		}
	}
	return FailureOther
}
