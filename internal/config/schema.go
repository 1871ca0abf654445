package config

import "time"

// Config is the root configuration for the WhatsApp agent. It is read once
// at startup and handed to components explicitly; nothing reads the process
// environment after Load returns.
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Trigger TriggerConfig
	AI      AIConfig
	Reply   ReplyConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig holds the webhook HTTP server configuration.
type ServerConfig struct {
	Addr string
}

// GatewayConfig holds the WAHA gateway connection configuration.
type GatewayConfig struct {
	BaseURL    string
	APIKey     string
	Session    string
	WebhookURL string
	Timeout    time.Duration
}

// TriggerConfig controls which inbound messages qualify for a reply.
type TriggerConfig struct {
	// Prefix is the case-insensitive trigger the message text must start with.
	Prefix string
	// StripPrefix removes the trigger from the text handed to the model.
	StripPrefix bool
	// ReplyToSelf allows the bot to answer messages it sent itself.
	ReplyToSelf bool
}

// AIConfig holds the completion API configuration.
type AIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	SystemPrompt string
}

// ReplyConfig controls outbound reply shaping.
type ReplyConfig struct {
	MaxLength int
	Delay     time.Duration
	Quote     bool
}

// SessionConfig holds WAHA session lifecycle configuration.
type SessionConfig struct {
	Autostart      bool
	WatchInterval  time.Duration
	DedupCacheSize int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
	File  string
}

// DefaultSystemPrompt is used when AI_SYSTEM_PROMPT is not set.
const DefaultSystemPrompt = "You are a helpful WhatsApp assistant. " +
	"Reply with a clear, accurate answer in under 200 characters. " +
	"Keep a friendly, conversational tone and answer in the user's language."

// DefaultConfig returns a new Config with sensible default values.
// Required fields (Gateway.BaseURL, AI.APIKey) are left empty.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "0.0.0.0:8000",
		},
		Gateway: GatewayConfig{
			BaseURL:    "",
			APIKey:     "",
			Session:    "default",
			WebhookURL: "http://localhost:8000/webhook",
			Timeout:    30 * time.Second,
		},
		Trigger: TriggerConfig{
			Prefix:      "gg",
			StripPrefix: true,
			ReplyToSelf: false,
		},
		AI: AIConfig{
			APIKey:       "",
			BaseURL:      "",
			Model:        "gpt-4o",
			MaxTokens:    256,
			Temperature:  0.7,
			Timeout:      60 * time.Second,
			SystemPrompt: DefaultSystemPrompt,
		},
		Reply: ReplyConfig{
			MaxLength: 200,
			Delay:     1 * time.Second,
			Quote:     true,
		},
		Session: SessionConfig{
			Autostart:      false,
			WatchInterval:  60 * time.Second,
			DedupCacheSize: 1000,
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}
