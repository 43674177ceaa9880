package llm

import (
	"testing"

	"github.com/ppiankov/credence/internal/model"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{Provider: ""})
	if err != nil {
		t.Fatalf("expected no error for disabled provider, got %v", err)
	}
	if p != nil {
		t.Error("expected nil provider when disabled")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "skynet"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProvider_OpenAIRequiresKey(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("expected error without API key")
	}

	p, err := NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai, got %s", p.Name())
	}
}

func TestNewProvider_AnthropicAliases(t *testing.T) {
	for _, name := range []string{"anthropic", "claude"} {
		p, err := NewProvider(Config{Provider: name, APIKey: "sk-ant-test"})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
		if p.Name() != "anthropic" {
			t.Errorf("expected anthropic, got %s", p.Name())
		}
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	p, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected ollama, got %s", p.Name())
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "sk-test",
		Timeout:   15,
		MaxTokens: 512,
	}, model.HTTPConfig{HTTPProxy: "http://proxy:3128"})

	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" {
		t.Error("provider settings not carried over")
	}
	if cfg.Timeout != 15 || cfg.MaxTokens != 512 {
		t.Error("limits not carried over")
	}
	if cfg.HTTPProxy != "http://proxy:3128" {
		t.Error("proxy settings not carried over")
	}
}
