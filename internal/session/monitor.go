// Package session watches the WhatsApp session behind the gateway and,
// when configured, brings it up on startup.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

// statusTimeout bounds a single gateway status probe.
const statusTimeout = 10 * time.Second

// StatusClient is the slice of the gateway API the monitor needs.
// *waha.Client satisfies it.
type StatusClient interface {
	SessionStatus(ctx context.Context) (waha.SessionStatus, error)
	StartSession(ctx context.Context) error
}

// Monitor polls the gateway session on an interval, logs status
// transitions and optionally restarts a dead session.
type Monitor struct {
	client    StatusClient
	interval  time.Duration
	autostart bool
	log       *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	last    string
}

// NewMonitor creates a monitor over the given gateway client.
func NewMonitor(client StatusClient, cfg config.SessionConfig, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		client:    client,
		interval:  cfg.WatchInterval,
		autostart: cfg.Autostart,
		log:       logger,
	}
}

// EnsureStarted checks the session once and, when autostart is enabled
// and the session is not working, asks the gateway to start it. Called
// during service startup before the watch loop takes over.
func (m *Monitor) EnsureStarted(ctx context.Context) error {
	if !m.autostart {
		return nil
	}

	status, err := m.client.SessionStatus(ctx)
	if err == nil && status.IsWorking() {
		m.observe(status.Status)
		return nil
	}
	if err != nil {
		m.log.Warn("session status unavailable, requesting start", zap.Error(err))
	} else {
		m.observe(status.Status)
	}

	if err := m.client.StartSession(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	m.log.Info("session start requested")
	return nil
}

// Start begins the watch loop. It returns immediately; polling happens
// in a background goroutine until Stop or context cancellation.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("session monitor is already running")
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.running = true
	m.mu.Unlock()

	go m.watch(ctx)
	return nil
}

// Stop halts the watch loop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	if m.cancel != nil {
		m.cancel()
	}
}

// IsRunning returns whether the watch loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status returns the most recently observed session status, or an
// empty string before the first successful probe.
func (m *Monitor) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) watch(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	// Probe once right away so the first log line does not wait a
	// full interval.
	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll performs one status probe and reacts to the result.
func (m *Monitor) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	status, err := m.client.SessionStatus(ctx)
	if err != nil {
		m.log.Warn("session status check failed", zap.Error(err))
		return
	}

	m.observe(status.Status)

	// STARTING and SCAN_QR_CODE are on their way up; only a dead
	// session earns a restart.
	if m.autostart && (status.Status == waha.StatusStopped || status.Status == waha.StatusFailed) {
		if err := m.client.StartSession(ctx); err != nil {
			m.log.Warn("session autostart failed", zap.Error(err))
		} else {
			m.log.Info("session autostart requested", zap.String("was", status.Status))
		}
	}
}

// observe records a status value and logs transitions.
func (m *Monitor) observe(status string) {
	m.mu.Lock()
	old := m.last
	m.last = status
	m.mu.Unlock()

	switch {
	case old == "":
		m.log.Info("session status", zap.String("status", status))
	case old != status:
		m.log.Info("session status changed",
			zap.String("from", old),
			zap.String("to", status))
	}
}
