package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"slideforge/config"
)

func openAIStub(t *testing.T, reply string, inspect func(r *http.Request, body map[string]interface{})) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		if inspect != nil {
			inspect(r, body)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

func TestLLMServiceChatOpenAI(t *testing.T) {
	var gotAuth, gotPath string
	srv := openAIStub(t, "hello back", func(r *http.Request, body map[string]interface{}) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if body["model"] != "gpt-3.5-turbo" {
			t.Errorf("model = %v", body["model"])
		}
	})
	defer srv.Close()

	svc := NewLLMService(config.Config{
		LLMProvider: "OpenAI",
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		ModelName:   "gpt-3.5-turbo",
		MaxTokens:   100,
	})

	reply, err := svc.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "hello back" {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	// The bare base URL gets the chat completions path appended.
	if gotPath != "/v1/chat/completions" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestLLMServiceOpenRouterHeaders(t *testing.T) {
	var referer, title string
	srv := openAIStub(t, "ok", func(r *http.Request, body map[string]interface{}) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
	})
	defer srv.Close()

	svc := NewLLMService(config.Config{
		LLMProvider: "OpenRouter",
		APIKey:      "sk-or-test",
		BaseURL:     srv.URL,
		ModelName:   "qwen/qwen2.5-vl-32b-instruct:free",
	})

	if _, err := svc.Chat(context.Background(), "hi"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if referer == "" || title == "" {
		t.Errorf("OpenRouter attribution headers missing: referer=%q title=%q", referer, title)
	}
}

func TestLLMServiceSystemPromptIncluded(t *testing.T) {
	var messages []interface{}
	srv := openAIStub(t, "ok", func(r *http.Request, body map[string]interface{}) {
		messages, _ = body["messages"].([]interface{})
	})
	defer srv.Close()

	svc := NewLLMService(config.Config{
		LLMProvider: "OpenAI",
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		ModelName:   "gpt-3.5-turbo",
	})

	if _, err := svc.Complete(context.Background(), "be terse", "hi", 50); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(messages))
	}
	first, _ := messages[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "be terse" {
		t.Errorf("first message = %v", first)
	}
}

func TestLLMServiceChatAnthropic(t *testing.T) {
	var apiKey, version string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "anthropic reply"}},
		})
	}))
	defer srv.Close()

	svc := NewLLMService(config.Config{
		LLMProvider: "Anthropic",
		APIKey:      "sk-ant-test",
		BaseURL:     srv.URL,
		ModelName:   "claude-3-haiku",
		MaxTokens:   200,
	})

	reply, err := svc.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if reply != "anthropic reply" {
		t.Errorf("reply = %q", reply)
	}
	if apiKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q", apiKey)
	}
	if version != "2023-06-01" {
		t.Errorf("anthropic-version = %q", version)
	}
}

func TestLLMServiceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewLLMService(config.Config{
		LLMProvider: "OpenAI",
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		ModelName:   "gpt-3.5-turbo",
	})

	_, err := svc.Chat(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
}

func TestLLMServiceRequiresAPIKey(t *testing.T) {
	svc := NewLLMService(config.Config{LLMProvider: "OpenAI"})
	if svc.HasAPIKey() {
		t.Error("HasAPIKey should be false without a key")
	}
	if _, err := svc.Chat(context.Background(), "hi"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestLLMServiceUnsupportedProvider(t *testing.T) {
	svc := NewLLMService(config.Config{LLMProvider: "Mystery", APIKey: "x"})
	if _, err := svc.Chat(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}
