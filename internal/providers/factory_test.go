package providers

import (
	"strings"
	"testing"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
)

func TestNewProviderFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.APIKey = "sk-test"
	cfg.AI.Model = "gpt-4o-mini"

	p, err := NewProviderFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewProviderFromConfig: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %q, want %q", p.Name(), "openai")
	}
	if p.DefaultModel() != "gpt-4o-mini" {
		t.Errorf("DefaultModel() = %q, want %q", p.DefaultModel(), "gpt-4o-mini")
	}
}

func TestNewProviderFromConfig_NilConfig(t *testing.T) {
	if _, err := NewProviderFromConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNewProviderFromConfig_MissingKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.APIKey = ""

	_, err := NewProviderFromConfig(cfg)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestProviderNameForBase(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "openai"},
		{"https://api.groq.com/openai/v1", "groq"},
		{"https://openrouter.ai/api/v1", "openrouter"},
		{"http://localhost:11434/v1", "local"},
		{"http://127.0.0.1:8080/v1", "local"},
		{"https://llm.internal.example.com/v1", "openai-compatible"},
	}

	for _, tt := range tests {
		if got := providerNameForBase(tt.base); got != tt.want {
			t.Errorf("providerNameForBase(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
