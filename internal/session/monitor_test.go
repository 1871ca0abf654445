package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

type fakeGateway struct {
	mu        sync.Mutex
	status    string
	statusErr error
	startErr  error
	probes    int
	starts    int
}

func (f *fakeGateway) SessionStatus(ctx context.Context) (waha.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	if f.statusErr != nil {
		return waha.SessionStatus{}, f.statusErr
	}
	return waha.SessionStatus{Name: "default", Status: f.status}, nil
}

func (f *fakeGateway) StartSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.startErr
}

func (f *fakeGateway) setStatus(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func (f *fakeGateway) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func watchConfig(autostart bool) config.SessionConfig {
	return config.SessionConfig{
		Autostart:     autostart,
		WatchInterval: 20 * time.Millisecond,
	}
}

func TestEnsureStarted_AlreadyWorking(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusWorking}
	m := NewMonitor(gw, watchConfig(true), nil)

	if err := m.EnsureStarted(context.Background()); err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if gw.startCount() != 0 {
		t.Errorf("starts = %d, want 0 for a working session", gw.startCount())
	}
	if m.Status() != waha.StatusWorking {
		t.Errorf("Status() = %q, want WORKING", m.Status())
	}
}

func TestEnsureStarted_StartsStoppedSession(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusStopped}
	m := NewMonitor(gw, watchConfig(true), nil)

	if err := m.EnsureStarted(context.Background()); err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if gw.startCount() != 1 {
		t.Errorf("starts = %d, want 1", gw.startCount())
	}
}

func TestEnsureStarted_GatewayUnreachable(t *testing.T) {
	gw := &fakeGateway{statusErr: errors.New("connection refused")}
	m := NewMonitor(gw, watchConfig(true), nil)

	// An unreachable status endpoint still gets a start attempt.
	if err := m.EnsureStarted(context.Background()); err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if gw.startCount() != 1 {
		t.Errorf("starts = %d, want 1", gw.startCount())
	}
}

func TestEnsureStarted_Disabled(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusStopped}
	m := NewMonitor(gw, watchConfig(false), nil)

	if err := m.EnsureStarted(context.Background()); err != nil {
		t.Fatalf("EnsureStarted: %v", err)
	}
	if gw.probes != 0 || gw.startCount() != 0 {
		t.Errorf("probes = %d, starts = %d; want no gateway calls", gw.probes, gw.startCount())
	}
}

func TestEnsureStarted_StartFailure(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusFailed, startErr: errors.New("boom")}
	m := NewMonitor(gw, watchConfig(true), nil)

	if err := m.EnsureStarted(context.Background()); err == nil {
		t.Fatal("expected an error when the start call fails")
	}
}

func TestMonitor_TracksStatus(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusWorking}
	m := NewMonitor(gw, watchConfig(false), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	waitForStatus(t, m, waha.StatusWorking)

	gw.setStatus(waha.StatusFailed)
	waitForStatus(t, m, waha.StatusFailed)
}

func TestMonitor_AutostartsDeadSession(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusFailed}
	m := NewMonitor(gw, watchConfig(true), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gw.startCount() > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("monitor never attempted to restart the failed session")
}

func TestMonitor_NoAutostartWhileScanning(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusScanQR}
	m := NewMonitor(gw, watchConfig(true), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()

	waitForStatus(t, m, waha.StatusScanQR)
	time.Sleep(60 * time.Millisecond)

	if gw.startCount() != 0 {
		t.Errorf("starts = %d, want 0 while waiting for the QR scan", gw.startCount())
	}
}

func TestMonitor_StartStop(t *testing.T) {
	gw := &fakeGateway{status: waha.StatusWorking}
	m := NewMonitor(gw, watchConfig(false), nil)

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second Start should fail while running")
	}

	m.Stop()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !m.IsRunning() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if m.IsRunning() {
		t.Error("monitor still running after Stop")
	}

	m.Stop() // second Stop is a no-op
}

func waitForStatus(t *testing.T, m *Monitor, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Status() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Status() = %q, want %q", m.Status(), want)
}
