package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

// Status display styles.
var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1).
				Padding(0, 1)

	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(60)

	statusSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginTop(1)

	statusLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Width(20)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255"))

	statusEnabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")).
				Bold(true)

	statusDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	statusWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)
)

// StatusReport carries live probe results to show next to the static
// configuration. A nil report renders configuration only.
type StatusReport struct {
	GatewayReachable bool
	GatewayError     string
	SessionStatus    string
}

// ShowStatus displays the configuration and, when a report is given,
// the live gateway state.
func ShowStatus(cfg *config.Config, report *StatusReport) error {
	var sb strings.Builder

	title := statusTitleStyle.Render("WhatsApp Agent Status")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString(statusSectionStyle.Render("Gateway"))
	sb.WriteString("\n")
	sb.WriteString(renderGatewayStatus(cfg, report))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("AI Provider"))
	sb.WriteString("\n")
	sb.WriteString(renderProviderStatus(cfg))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("Trigger"))
	sb.WriteString("\n")
	sb.WriteString(renderTriggerStatus(cfg))
	sb.WriteString("\n")

	sb.WriteString(statusSectionStyle.Render("Reply"))
	sb.WriteString("\n")
	sb.WriteString(renderReplyStatus(cfg))

	content := statusBoxStyle.Render(sb.String())
	fmt.Println(content)

	return nil
}

// renderGatewayStatus renders the WAHA connection rows.
func renderGatewayStatus(cfg *config.Config, report *StatusReport) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("URL", statusValueStyle.Render(cfg.Gateway.BaseURL)))
	sb.WriteString(renderStatusRow("Session", statusValueStyle.Render(cfg.Gateway.Session)))

	if cfg.Gateway.APIKey != "" {
		sb.WriteString(renderStatusRow("API Key", statusValueStyle.Render(maskAPIKey(cfg.Gateway.APIKey))))
	} else {
		sb.WriteString(renderStatusRow("API Key", statusDisabledStyle.Render("not set")))
	}

	sb.WriteString(renderStatusRow("Webhook", statusValueStyle.Render(cfg.Gateway.WebhookURL)))
	sb.WriteString(renderStatusRow("Listen", statusValueStyle.Render(cfg.Server.Addr)))

	if report != nil {
		if report.GatewayReachable {
			sb.WriteString(renderStatusRow("Reachable", statusEnabledStyle.Render("yes")))
			sb.WriteString(renderStatusRow("Status", renderSessionState(report.SessionStatus)))
		} else {
			sb.WriteString(renderStatusRow("Reachable", statusErrorStyle.Render("no")))
			if report.GatewayError != "" {
				sb.WriteString(renderStatusRow("", statusWarningStyle.Render(report.GatewayError)))
			}
		}
	}

	if cfg.Session.Autostart {
		sb.WriteString(renderStatusRow("Autostart", statusEnabledStyle.Render("enabled")))
	} else {
		sb.WriteString(renderStatusRow("Autostart", statusDisabledStyle.Render("disabled")))
	}

	return sb.String()
}

// renderProviderStatus renders the completion backend rows.
func renderProviderStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Model", statusValueStyle.Render(cfg.AI.Model)))

	if cfg.AI.BaseURL != "" {
		sb.WriteString(renderStatusRow("API Base", statusValueStyle.Render(cfg.AI.BaseURL)))
	}

	if cfg.AI.APIKey != "" {
		sb.WriteString(renderStatusRow("API Key", statusValueStyle.Render(maskAPIKey(cfg.AI.APIKey))))
	} else {
		sb.WriteString(renderStatusRow("API Key", statusErrorStyle.Render("not set")))
	}

	sb.WriteString(renderStatusRow("Timeout", statusValueStyle.Render(cfg.AI.Timeout.String())))
	sb.WriteString(renderStatusRow("Max Tokens", statusValueStyle.Render(fmt.Sprintf("%d", cfg.AI.MaxTokens))))
	sb.WriteString(renderStatusRow("Temperature", statusValueStyle.Render(fmt.Sprintf("%.1f", cfg.AI.Temperature))))

	return sb.String()
}

// renderTriggerStatus renders the message filter rows.
func renderTriggerStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Prefix", statusEnabledStyle.Render(cfg.Trigger.Prefix)))
	sb.WriteString(renderStatusRow("Strip Prefix", renderBool(cfg.Trigger.StripPrefix)))

	if cfg.Trigger.ReplyToSelf {
		sb.WriteString(renderStatusRow("Reply To Self", statusWarningStyle.Render("enabled")))
	} else {
		sb.WriteString(renderStatusRow("Reply To Self", statusDisabledStyle.Render("disabled")))
	}

	return sb.String()
}

// renderReplyStatus renders the outbound shaping rows.
func renderReplyStatus(cfg *config.Config) string {
	var sb strings.Builder

	sb.WriteString(renderStatusRow("Max Length", statusValueStyle.Render(fmt.Sprintf("%d", cfg.Reply.MaxLength))))
	sb.WriteString(renderStatusRow("Delay", statusValueStyle.Render(cfg.Reply.Delay.String())))
	sb.WriteString(renderStatusRow("Quote", renderBool(cfg.Reply.Quote)))

	return sb.String()
}

// renderSessionState colors a gateway session status.
func renderSessionState(status string) string {
	switch status {
	case waha.StatusWorking:
		return statusEnabledStyle.Render(status)
	case waha.StatusStarting, waha.StatusScanQR:
		return statusWarningStyle.Render(status)
	case "":
		return statusDisabledStyle.Render("unknown")
	default:
		return statusErrorStyle.Render(status)
	}
}

func renderBool(v bool) string {
	if v {
		return statusEnabledStyle.Render("yes")
	}
	return statusDisabledStyle.Render("no")
}

// renderStatusRow renders a label-value row.
func renderStatusRow(label, value string) string {
	if label == "" {
		return fmt.Sprintf("  %s\n", value)
	}
	return fmt.Sprintf("  %s %s\n",
		statusLabelStyle.Render(label+":"),
		value,
	)
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
