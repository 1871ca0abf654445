package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and gateway status",
	Long:  "Display the active configuration and probe the gateway for the live session state.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return tui.ShowStatus(cfg, probeGateway(cfg))
}

// probeGateway checks gateway reachability and session state with a
// short timeout, so status stays snappy when the gateway is down.
func probeGateway(cfg *config.Config) *tui.StatusReport {
	client, err := newGatewayClient(cfg)
	if err != nil {
		return &tui.StatusReport{GatewayError: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.SessionStatus(ctx)
	if err != nil {
		return &tui.StatusReport{GatewayError: err.Error()}
	}

	return &tui.StatusReport{
		GatewayReachable: true,
		SessionStatus:    status.Status,
	}
}
