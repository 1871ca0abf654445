package channels

import (
	"context"
	"sync"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/bus"
)

// Channel is the interface all messaging surfaces must implement.
type Channel interface {
	// Name returns the unique identifier for this channel.
	Name() string

	// Start begins accepting inbound traffic on this channel.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop() error

	// Send delivers an outbound message through this channel.
	Send(msg bus.OutboundMessage) error

	// IsRunning returns true if the channel is currently active.
	IsRunning() bool
}

// BaseChannel provides common functionality for channel implementations.
type BaseChannel struct {
	name    string
	bus     *bus.MessageBus
	running bool
	mu      sync.RWMutex
}

// NewBaseChannel creates a new BaseChannel with the given parameters.
func NewBaseChannel(name string, msgBus *bus.MessageBus) BaseChannel {
	return BaseChannel{
		name: name,
		bus:  msgBus,
	}
}

// Name returns the channel's unique identifier.
func (c *BaseChannel) Name() string {
	return c.name
}

// IsRunning returns true if the channel is currently active.
func (c *BaseChannel) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// setRunning sets the running state of the channel.
func (c *BaseChannel) setRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
}

// getBus returns the message bus for use by derived channels.
func (c *BaseChannel) getBus() *bus.MessageBus {
	return c.bus
}
