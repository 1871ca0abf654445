package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

var qrOutput string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the gateway session",
	Long:  "Inspect and control the WhatsApp session behind the WAHA gateway.",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session status",
	RunE:  runSessionStatus,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the session and register the webhook",
	RunE:  runSessionStart,
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the session",
	RunE:  runSessionStop,
}

var sessionQRCmd = &cobra.Command{
	Use:   "qr",
	Short: "Fetch the pairing QR code",
	Long:  "Download the QR code for pairing the session and write it to a file. Scan it with WhatsApp on your phone.",
	RunE:  runSessionQR,
}

func init() {
	sessionQRCmd.Flags().StringVarP(&qrOutput, "output", "o", "qr.png", "file to write the QR code to")

	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionStopCmd)
	sessionCmd.AddCommand(sessionQRCmd)
}

// newGatewayClient builds a WAHA client from the loaded configuration.
func newGatewayClient(cfg *config.Config) (*waha.Client, error) {
	client, err := waha.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Session, cfg.Gateway.WebhookURL,
		waha.WithAPIKey(cfg.Gateway.APIKey),
		waha.WithTimeout(cfg.Gateway.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway client: %w", err)
	}
	return client, nil
}

// loadGateway loads the configuration and builds the gateway client in
// one step, for the one-shot commands.
func loadGateway() (*config.Config, *waha.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newGatewayClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func runSessionStatus(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := client.SessionStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get session status: %w", err)
	}

	name := status.Name
	if name == "" {
		name = cfg.Gateway.Session
	}
	fmt.Printf("Session %q: %s\n", name, status.Status)
	if status.Status == waha.StatusScanQR {
		fmt.Println("Run 'whatsapp-agent session qr' and scan the code to pair.")
	}
	return nil
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.StartSession(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	fmt.Printf("Session %q start requested, webhook %s registered.\n",
		cfg.Gateway.Session, cfg.Gateway.WebhookURL)
	fmt.Println("Check 'whatsapp-agent session status' until it reports WORKING.")
	return nil
}

func runSessionStop(cmd *cobra.Command, args []string) error {
	cfg, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.StopSession(ctx); err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}

	fmt.Printf("Session %q stopped.\n", cfg.Gateway.Session)
	return nil
}

func runSessionQR(cmd *cobra.Command, args []string) error {
	_, client, err := loadGateway()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, contentType, err := client.QRCode(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch QR code: %w", err)
	}

	if err := os.WriteFile(qrOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", qrOutput, err)
	}

	fmt.Printf("QR code (%s) written to %s. Scan it with WhatsApp on your phone.\n", contentType, qrOutput)
	return nil
}
