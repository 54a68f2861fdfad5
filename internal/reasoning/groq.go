package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const groqTemperature = 0.3

// GroqProvider calls Groq's OpenAI-compatible chat completions endpoint.
// Groq ships no Go SDK, so this speaks the REST API directly.
type GroqProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGroqProvider(apiKey, model, baseURL string) *GroqProvider {
	return &GroqProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// Per-call deadlines come from the request context.
		httpClient: &http.Client{},
	}
}

func (p *GroqProvider) Name() string { return "groq" }

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

func (p *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(groqRequest{
		Model:       p.model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: groqTemperature,
	})
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		class := FailureUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			class = FailureTimeout
		}
		return "", &ProviderError{Provider: p.Name(), Class: class, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), Class: classifyGroqStatus(resp.StatusCode),
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}

	var parsed groqResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Class: FailureOther, Err: errors.New("empty response")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func classifyGroqStatus(status int) FailureClass {
	switch {
	case status == http.StatusTooManyRequests:
		return FailureRateLimited
	case status >= 500:
		return FailureUnavailable
	default:
		return FailureOther
	}
}
