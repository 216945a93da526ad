package openrouter

import (
	"context"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if c := NewClient(Config{BaseURL: "https://openrouter.ai/api/v1"}); c != nil {
		t.Fatal("NewClient() without api key should return nil")
	}
	if c := NewClient(Config{APIKey: "sk-test", BaseURL: "https://openrouter.ai/api/v1/"}); c == nil {
		t.Fatal("NewClient() with api key returned nil")
	}
}

func TestNewRequiresModel(t *testing.T) {
	t.Parallel()

	cfg := &Config{APIKey: "sk-test", BaseURL: "https://openrouter.ai/api/v1"}
	if _, err := cfg.New(context.Background()); err == nil {
		t.Fatal("New() without model should fail")
	}
}

func TestNewBuildsChatModel(t *testing.T) {
	t.Parallel()

	maxTokens := 100
	cfg := &Config{
		APIKey:             "sk-test",
		BaseURL:            "https://openrouter.ai/api/v1",
		Model:              "x-ai/grok-4.1-fast",
		MaxCompletionToken: &maxTokens,
		Temperature:        0.2,
	}
	m, err := cfg.New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if m == nil {
		t.Fatal("New() returned nil model")
	}
}
