package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WriteEnv renders cfg as a .env file at path, with every key Load reads,
// grouped the way Load reads them. The file is written with mode 0600 since
// it holds API keys.
func WriteEnv(cfg *Config, path string) error {
	var b strings.Builder

	b.WriteString("# WhatsApp agent configuration.\n")
	b.WriteString("# Values are read once at startup; restart the agent after editing.\n")

	b.WriteString("\n# Gateway\n")
	writeEnvLine(&b, "WAHA_BASE_URL", cfg.Gateway.BaseURL)
	writeEnvLine(&b, "WAHA_API_KEY", cfg.Gateway.APIKey)
	writeEnvLine(&b, "WAHA_SESSION_NAME", cfg.Gateway.Session)
	writeEnvLine(&b, "WAHA_TIMEOUT", cfg.Gateway.Timeout.String())
	writeEnvLine(&b, "WEBHOOK_URL", cfg.Gateway.WebhookURL)
	writeEnvLine(&b, "SERVER_ADDR", cfg.Server.Addr)

	b.WriteString("\n# Completions\n")
	writeEnvLine(&b, "OPENAI_API_KEY", cfg.AI.APIKey)
	writeEnvLine(&b, "OPENAI_API_BASE", cfg.AI.BaseURL)
	writeEnvLine(&b, "OPENAI_MODEL", cfg.AI.Model)
	writeEnvLine(&b, "AI_MAX_TOKENS", strconv.Itoa(cfg.AI.MaxTokens))
	writeEnvLine(&b, "AI_TEMPERATURE", strconv.FormatFloat(cfg.AI.Temperature, 'g', -1, 64))
	writeEnvLine(&b, "AI_TIMEOUT", cfg.AI.Timeout.String())
	writeEnvLine(&b, "AI_SYSTEM_PROMPT", cfg.AI.SystemPrompt)

	b.WriteString("\n# Trigger\n")
	writeEnvLine(&b, "TRIGGER_PREFIX", cfg.Trigger.Prefix)
	writeEnvLine(&b, "TRIGGER_STRIP_PREFIX", strconv.FormatBool(cfg.Trigger.StripPrefix))
	writeEnvLine(&b, "REPLY_TO_SELF", strconv.FormatBool(cfg.Trigger.ReplyToSelf))

	b.WriteString("\n# Reply\n")
	writeEnvLine(&b, "REPLY_MAX_LENGTH", strconv.Itoa(cfg.Reply.MaxLength))
	writeEnvLine(&b, "REPLY_DELAY", cfg.Reply.Delay.String())
	writeEnvLine(&b, "REPLY_QUOTE", strconv.FormatBool(cfg.Reply.Quote))

	b.WriteString("\n# Session\n")
	writeEnvLine(&b, "SESSION_AUTOSTART", strconv.FormatBool(cfg.Session.Autostart))
	writeEnvLine(&b, "SESSION_WATCH_INTERVAL", cfg.Session.WatchInterval.String())
	writeEnvLine(&b, "DEDUP_CACHE_SIZE", strconv.Itoa(cfg.Session.DedupCacheSize))

	b.WriteString("\n# Logging\n")
	writeEnvLine(&b, "LOG_LEVEL", cfg.Log.Level)
	writeEnvLine(&b, "LOG_FILE", cfg.Log.File)

	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func writeEnvLine(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%s=%s\n", key, quoteEnvValue(value))
}

// quoteEnvValue quotes values that would not survive a round trip through a
// plain KEY=value line.
func quoteEnvValue(v string) string {
	if strings.ContainsAny(v, " \t\"'#\n") {
		return strconv.Quote(v)
	}
	return v
}
