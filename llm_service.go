package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slideforge/config"
)

// LLMService is a thin text-completion client over the supported providers.
// OpenRouter speaks the OpenAI wire format with two extra attribution headers.
type LLMService struct {
	Provider  string
	APIKey    string
	BaseURL   string
	ModelName string
	MaxTokens int
}

func NewLLMService(cfg config.Config) *LLMService {
	return &LLMService{
		Provider:  cfg.LLMProvider,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		ModelName: cfg.ModelName,
		MaxTokens: cfg.MaxTokens,
	}
}

// HasAPIKey reports whether the service is usable as configured.
func (s *LLMService) HasAPIKey() bool {
	return s.APIKey != ""
}

// Chat sends a single user message and returns the model's text reply.
func (s *LLMService) Chat(ctx context.Context, message string) (string, error) {
	return s.Complete(ctx, "", message, s.MaxTokens)
}

// Complete sends an optional system prompt plus a user prompt and returns the
// model's text reply.
func (s *LLMService) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if s.APIKey == "" {
		return "", fmt.Errorf("no API key configured for provider %s", s.Provider)
	}

	switch s.Provider {
	case "OpenAI", "OpenRouter", "OpenAI-Compatible":
		return s.completeOpenAI(ctx, system, user, maxTokens)
	case "Anthropic":
		return s.completeAnthropic(ctx, system, user, maxTokens)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}

func (s *LLMService) endpointOpenAI() string {
	url := "https://api.openai.com/v1/chat/completions"
	if s.Provider == "OpenRouter" {
		url = "https://openrouter.ai/api/v1/chat/completions"
	}
	if s.BaseURL != "" {
		url = s.BaseURL
		// Users often configure just the base URL, e.g.
		// http://localhost:11434. Append the OpenAI path if it is missing.
		if !strings.Contains(url, "/chat/completions") {
			url = strings.TrimSuffix(url, "/") + "/v1/chat/completions"
		}
	}
	return url
}

func (s *LLMService) completeOpenAI(ctx context.Context, system, user string, maxTokens int) (string, error) {
	messages := []map[string]string{}
	if system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": user})

	body := map[string]interface{}{
		"model":    s.ModelName,
		"messages": messages,
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}

	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, "POST", s.endpointOpenAI(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	if s.Provider == "OpenRouter" {
		req.Header.Set("HTTP-Referer", "http://localhost:3000")
		req.Header.Set("X-Title", "Slideforge")
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s API error (%d): %s", s.Provider, resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no response from %s API", s.Provider)
}

func (s *LLMService) completeAnthropic(ctx context.Context, system, user string, maxTokens int) (string, error) {
	url := "https://api.anthropic.com/v1/messages"
	if s.BaseURL != "" {
		url = s.BaseURL
		if !strings.Contains(url, "/messages") {
			url = strings.TrimSuffix(url, "/") + "/v1/messages"
		}
	}

	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body := map[string]interface{}{
		"model":      s.ModelName,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}
	if system != "" {
		body["system"] = system
	}

	jsonBody, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Content) > 0 {
		return result.Content[0].Text, nil
	}
	return "", fmt.Errorf("no response from Anthropic")
}
