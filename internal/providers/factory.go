package providers

import (
	"fmt"
	"strings"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
)

// NewProviderFromConfig creates the completion provider described by the AI
// section of the configuration.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}

	name := "openai"
	if cfg.AI.BaseURL != "" {
		name = providerNameForBase(cfg.AI.BaseURL)
	}

	return NewOpenAIProvider(name, cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout), nil
}

// providerNameForBase derives a display name from a custom API base, so logs
// and status output say which backend is actually answering.
func providerNameForBase(base string) string {
	switch {
	case strings.Contains(base, "openai.com"):
		return "openai"
	case strings.Contains(base, "groq.com"):
		return "groq"
	case strings.Contains(base, "openrouter.ai"):
		return "openrouter"
	case strings.Contains(base, "localhost"), strings.Contains(base, "127.0.0.1"):
		return "local"
	default:
		return "openai-compatible"
	}
}
