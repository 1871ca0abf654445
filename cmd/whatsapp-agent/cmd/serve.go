package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/agent"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/bus"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/channels"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/logger"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/providers"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server and responder",
	Long:  "Start the webhook server, connect to the WAHA gateway and answer trigger-prefixed messages until interrupted.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	msgBus := bus.NewMessageBus(100)
	defer msgBus.Close()

	gateway, err := newGatewayClient(cfg)
	if err != nil {
		return err
	}

	provider, err := providers.NewProviderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	channel := channels.NewWhatsAppChannel(cfg, gateway, msgBus, log)

	responder, err := agent.NewResponder(agent.ResponderConfig{
		Bus:      msgBus,
		Provider: provider,
		Gateway:  gateway,
		Config:   cfg,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}

	monitor := session.NewMonitor(gateway, cfg.Session, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// A channel that cannot bind its port is fatal; everything else
	// degrades gracefully.
	errChan := make(chan error, 1)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := channel.Start(ctx); err != nil {
			errChan <- err
			return
		}
		<-ctx.Done()
		if err := channel.Stop(); err != nil {
			log.Error("failed to stop channel", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := responder.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("responder exited", zap.Error(err))
		}
	}()

	if err := monitor.EnsureStarted(ctx); err != nil {
		log.Warn("session autostart failed", zap.Error(err))
	}
	if err := monitor.Start(ctx); err != nil {
		log.Warn("failed to start session monitor", zap.Error(err))
	}
	defer monitor.Stop()

	log.Info("service started",
		zap.String("addr", cfg.Server.Addr),
		zap.String("gateway", cfg.Gateway.BaseURL),
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.AI.Model),
		zap.String("trigger", cfg.Trigger.Prefix))

	fmt.Println("WhatsApp agent is running. Press Ctrl+C to stop.")

	var runErr error
	select {
	case <-sigChan:
		fmt.Println("\nShutting down...")
	case err := <-errChan:
		log.Error("fatal startup error", zap.Error(err))
		runErr = err
	}

	// Cancel context to stop all goroutines
	cancel()

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if runErr == nil {
			fmt.Println("Stopped gracefully.")
		}
	case <-time.After(10 * time.Second):
		fmt.Println("Shutdown timed out.")
	}

	return runErr
}
