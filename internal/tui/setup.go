// Package tui provides the interactive terminal surfaces of the agent:
// the first-run setup wizard and the status panel.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
)

// Backend identifies a completion API option in the setup wizard.
type Backend string

const (
	BackendOpenAI     Backend = "openai"
	BackendGroq       Backend = "groq"
	BackendOpenRouter Backend = "openrouter"
	BackendLocal      Backend = "local"
)

// backendBaseURLs maps each hosted backend to its OpenAI-compatible API
// base. OpenAI itself uses the client default; the local backend asks for
// the URL instead.
var backendBaseURLs = map[Backend]string{
	BackendOpenAI:     "",
	BackendGroq:       "https://api.groq.com/openai/v1",
	BackendOpenRouter: "https://openrouter.ai/api/v1",
}

// modelOptions defines the models offered per backend. Local backends take
// a free-form model name.
var modelOptions = map[Backend][]string{
	BackendOpenAI: {
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
	},
	BackendGroq: {
		"llama-3.3-70b-versatile",
		"llama-3.1-8b-instant",
	},
	BackendOpenRouter: {
		"openai/gpt-4o",
		"anthropic/claude-3.5-sonnet",
		"meta-llama/llama-3.1-70b-instruct",
	},
	BackendLocal: {}, // User provides model name
}

// Styles for the setup wizard.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// SetupState holds the answers collected by the setup wizard.
type SetupState struct {
	GatewayURL  string
	GatewayKey  string
	SessionName string
	WebhookURL  string
	Autostart   bool

	Backend     Backend
	APIKey      string
	BaseURL     string
	Model       string
	CustomModel string

	Prefix      string
	StripPrefix bool
	ReplyToSelf bool

	Confirmed bool
}

// RunSetup walks through gateway, completion API and trigger configuration
// and writes the result to envPath. The returned Config is the one that was
// saved.
func RunSetup(envPath string) (*config.Config, error) {
	state := &SetupState{
		SessionName: "default",
		WebhookURL:  "http://localhost:8000/webhook",
		BaseURL:     "http://localhost:11434/v1",
		Prefix:      "gg",
		StripPrefix: true,
	}

	printWelcome(envPath)

	// Step 1: Gateway Connection
	if err := runGatewayStep(state); err != nil {
		return nil, fmt.Errorf("gateway step failed: %w", err)
	}

	// Step 2: Backend Selection
	if err := runBackendStep(state); err != nil {
		return nil, fmt.Errorf("backend step failed: %w", err)
	}

	// Step 3: Backend Configuration
	if err := runBackendConfigStep(state); err != nil {
		return nil, fmt.Errorf("backend config step failed: %w", err)
	}

	// Step 4: Model Selection
	if err := runModelSelectionStep(state); err != nil {
		return nil, fmt.Errorf("model selection step failed: %w", err)
	}

	// Step 5: Trigger Configuration
	if err := runTriggerStep(state); err != nil {
		return nil, fmt.Errorf("trigger step failed: %w", err)
	}

	// Step 6: Confirmation
	if err := runConfirmationStep(state); err != nil {
		return nil, fmt.Errorf("confirmation step failed: %w", err)
	}

	if !state.Confirmed {
		return nil, fmt.Errorf("setup cancelled by user")
	}

	cfg := buildConfigFromState(state)

	if err := config.WriteEnv(cfg, envPath); err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println(successStyle.Render("\n✓ Configuration saved to " + envPath))
	fmt.Println()
	fmt.Println(subtitleStyle.Render("Next steps:"))
	fmt.Println("  whatsapp-agent session start   " + subtitleStyle.Render("create the session and register the webhook"))
	fmt.Println("  whatsapp-agent session qr      " + subtitleStyle.Render("pair your phone"))
	fmt.Println("  whatsapp-agent serve           " + subtitleStyle.Render("run the agent"))
	fmt.Println()

	return cfg, nil
}

// printWelcome displays the banner and a short explanation of the wizard.
func printWelcome(envPath string) {
	banner := "\n" +
		"   __ _   __ _\n" +
		"  / _` | / _` |\n" +
		" | (_| || (_| |\n" +
		"  \\__, | \\__, |\n" +
		"  |___/  |___/\n" +
		"\n" +
		" WhatsApp chat agent\n"
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render(banner))

	welcome := boxStyle.Render(
		titleStyle.Render("Welcome to WhatsApp Agent Setup") + "\n\n" +
			"This wizard connects the agent to your WAHA gateway and an\n" +
			"OpenAI-compatible completion API.\n" +
			"You can always edit the configuration later at:\n" +
			subtitleStyle.Render(envPath),
	)
	fmt.Println(welcome)
	fmt.Println()
}

// runGatewayStep collects the WAHA gateway connection settings.
func runGatewayStep(state *SetupState) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("WAHA base URL").
				Description("Where your WAHA gateway is reachable").
				Placeholder("http://localhost:3000").
				Value(&state.GatewayURL).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("gateway URL is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("WAHA API key (optional)").
				Description("Leave empty if the gateway runs without authentication").
				EchoMode(huh.EchoModePassword).
				Value(&state.GatewayKey),
			huh.NewInput().
				Title("Session name").
				Description("The WAHA session the agent answers for").
				Value(&state.SessionName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("session name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Webhook URL").
				Description("URL the gateway uses to deliver messages to the agent").
				Value(&state.WebhookURL).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("webhook URL is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Start the session automatically?").
				Description("The agent starts and restarts the WAHA session as needed").
				Value(&state.Autostart),
		),
	)

	return form.Run()
}

// runBackendStep selects the completion API backend.
func runBackendStep(state *SetupState) error {
	var backend string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select your completion API").
				Description("The agent speaks the OpenAI chat completions protocol").
				Options(
					huh.NewOption("OpenAI (GPT models)", string(BackendOpenAI)),
					huh.NewOption("Groq (fast open models)", string(BackendGroq)),
					huh.NewOption("OpenRouter (multiple models, one API)", string(BackendOpenRouter)),
					huh.NewOption("Local / self-hosted (Ollama, vLLM)", string(BackendLocal)),
				).
				Value(&backend),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	state.Backend = Backend(backend)
	return nil
}

// runBackendConfigStep configures the selected backend.
func runBackendConfigStep(state *SetupState) error {
	switch state.Backend {
	case BackendOpenAI, BackendGroq, BackendOpenRouter:
		state.BaseURL = backendBaseURLs[state.Backend]
		return runAPIKeyStep(state)
	case BackendLocal:
		return runLocalStep(state)
	default:
		return fmt.Errorf("unknown backend: %s", state.Backend)
	}
}

// runAPIKeyStep prompts for the hosted backend's API key.
func runAPIKeyStep(state *SetupState) error {
	var backendName string
	var placeholder string

	switch state.Backend {
	case BackendOpenAI:
		backendName = "OpenAI"
		placeholder = "sk-..."
	case BackendGroq:
		backendName = "Groq"
		placeholder = "gsk_..."
	case BackendOpenRouter:
		backendName = "OpenRouter"
		placeholder = "sk-or-..."
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Enter your %s API key", backendName)).
				Description("Stored locally in the .env file and never shared").
				Placeholder(placeholder).
				EchoMode(huh.EchoModePassword).
				Value(&state.APIKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

// runLocalStep configures a local OpenAI-compatible server.
func runLocalStep(state *SetupState) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("The OpenAI-compatible endpoint of your local server").
				Placeholder("http://localhost:11434/v1").
				Value(&state.BaseURL),
			huh.NewInput().
				Title("API key").
				Description("Local servers usually accept any value; it just has to be set").
				Placeholder("ollama").
				EchoMode(huh.EchoModePassword).
				Value(&state.APIKey).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

// runModelSelectionStep allows the user to select or enter a model.
func runModelSelectionStep(state *SetupState) error {
	models := modelOptions[state.Backend]

	if state.Backend == BackendLocal || len(models) == 0 {
		// Free-form model input for local servers
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter model name").
					Description("The model your server exposes (e.g., llama3.2, mistral, qwen2.5)").
					Placeholder("llama3.2").
					Value(&state.CustomModel).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("model name is required")
						}
						return nil
					}),
			),
		)

		if err := form.Run(); err != nil {
			return err
		}
		state.Model = state.CustomModel
		return nil
	}

	// Select from available models
	options := make([]huh.Option[string], len(models))
	for i, m := range models {
		options[i] = huh.NewOption(m, m)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select model").
				Description("The model used to draft replies").
				Options(options...).
				Value(&state.Model),
		),
	)

	return form.Run()
}

// runTriggerStep configures which messages the agent answers.
func runTriggerStep(state *SetupState) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trigger prefix").
				Description("Messages must start with this word to get an answer").
				Value(&state.Prefix).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("trigger prefix is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Strip the prefix from the prompt?").
				Description("Hand the model the question without the trigger word").
				Value(&state.StripPrefix),
			huh.NewConfirm().
				Title("Answer your own messages?").
				Description("Lets you trigger the agent from the paired phone itself").
				Value(&state.ReplyToSelf),
		),
	)

	return form.Run()
}

// runConfirmationStep shows a summary and confirms the configuration.
func runConfirmationStep(state *SetupState) error {
	summary := buildSummary(state)
	fmt.Println(boxStyle.Render(summary))
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Yes, save").
				Negative("No, cancel").
				Value(&state.Confirmed),
		),
	)

	return form.Run()
}

// buildSummary creates a text summary of the configuration.
func buildSummary(state *SetupState) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Configuration Summary"))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Gateway: %s\n", successStyle.Render(state.GatewayURL)))
	sb.WriteString(fmt.Sprintf("Session: %s\n", state.SessionName))
	sb.WriteString(fmt.Sprintf("Webhook: %s\n", state.WebhookURL))
	if state.Autostart {
		sb.WriteString(fmt.Sprintf("Autostart: %s\n", successStyle.Render("enabled")))
	} else {
		sb.WriteString(fmt.Sprintf("Autostart: %s\n", subtitleStyle.Render("disabled")))
	}

	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Backend: %s\n", successStyle.Render(string(state.Backend))))
	sb.WriteString(fmt.Sprintf("Model: %s\n", state.Model))
	if state.BaseURL != "" {
		sb.WriteString(fmt.Sprintf("API base: %s\n", state.BaseURL))
	}

	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Trigger prefix: %s\n", successStyle.Render(state.Prefix)))
	if state.StripPrefix {
		sb.WriteString(fmt.Sprintf("Strip prefix: %s\n", successStyle.Render("yes")))
	} else {
		sb.WriteString(fmt.Sprintf("Strip prefix: %s\n", subtitleStyle.Render("no")))
	}
	if state.ReplyToSelf {
		sb.WriteString(fmt.Sprintf("Reply to self: %s\n", warningStyle.Render("yes")))
	} else {
		sb.WriteString(fmt.Sprintf("Reply to self: %s\n", subtitleStyle.Render("no")))
	}

	return sb.String()
}

// buildConfigFromState creates a Config from the setup state.
func buildConfigFromState(state *SetupState) *config.Config {
	cfg := config.DefaultConfig()

	cfg.Gateway.BaseURL = strings.TrimRight(strings.TrimSpace(state.GatewayURL), "/")
	cfg.Gateway.APIKey = strings.TrimSpace(state.GatewayKey)
	cfg.Gateway.Session = strings.TrimSpace(state.SessionName)
	cfg.Gateway.WebhookURL = strings.TrimSpace(state.WebhookURL)
	cfg.Session.Autostart = state.Autostart

	cfg.AI.APIKey = strings.TrimSpace(state.APIKey)
	cfg.AI.BaseURL = strings.TrimSpace(state.BaseURL)
	cfg.AI.Model = state.Model
	if cfg.AI.Model == "" {
		cfg.AI.Model = state.CustomModel
	}

	cfg.Trigger.Prefix = strings.TrimSpace(state.Prefix)
	cfg.Trigger.StripPrefix = state.StripPrefix
	cfg.Trigger.ReplyToSelf = state.ReplyToSelf

	return cfg
}
