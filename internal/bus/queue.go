package bus

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when a message receive operation times out.
var ErrTimeout = errors.New("timeout waiting for message")

// ErrQueueFull is returned by TryPublishInbound when the inbound buffer has
// no room. The webhook handler treats it as a drop, never as backpressure:
// the gateway must get its acknowledgement regardless.
var ErrQueueFull = errors.New("inbound queue full")

// ErrClosed is returned when publishing to a closed bus.
var ErrClosed = errors.New("message bus closed")

// MessageBus decouples webhook intake from response generation, and response
// generation from delivery, with a bounded buffer on both hops.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	subscribers []func(OutboundMessage)
	mu          sync.RWMutex

	closed    chan struct{}
	closeOnce sync.Once
}

// NewMessageBus creates a new MessageBus with the specified buffer size
// for both inbound and outbound channels.
func NewMessageBus(bufferSize int) *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufferSize),
		outbound: make(chan OutboundMessage, bufferSize),
		closed:   make(chan struct{}),
	}
}

// PublishInbound enqueues an inbound message, blocking while the buffer is
// full. The webhook handler uses TryPublishInbound instead; this variant is
// for callers that can afford to wait.
func (b *MessageBus) PublishInbound(msg InboundMessage) error {
	select {
	case <-b.closed:
		return ErrClosed
	case b.inbound <- msg:
		return nil
	}
}

// TryPublishInbound enqueues an inbound message without ever blocking.
// A full buffer returns ErrQueueFull.
func (b *MessageBus) TryPublishInbound(msg InboundMessage) error {
	select {
	case <-b.closed:
		return ErrClosed
	default:
	}

	select {
	case b.inbound <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// ConsumeInboundWithTimeout waits for an inbound message with a timeout.
// Returns ErrTimeout if no message is received within the specified duration.
func (b *MessageBus) ConsumeInboundWithTimeout(ctx context.Context, timeout time.Duration) (InboundMessage, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-b.inbound:
		return msg, nil
	case <-timer.C:
		return InboundMessage{}, ErrTimeout
	case <-ctx.Done():
		return InboundMessage{}, ctx.Err()
	}
}

// PublishOutbound sends a reply to the outbound channel. It blocks while the
// buffer is full and returns ErrClosed after Close.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) error {
	select {
	case <-b.closed:
		return ErrClosed
	case b.outbound <- msg:
		return nil
	}
}

// SubscribeOutbound registers a callback to receive outbound messages.
func (b *MessageBus) SubscribeOutbound(callback func(OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, callback)
}

// DispatchOutbound dispatches outbound messages to registered subscribers.
// It should be called once and runs until the context is cancelled or the
// bus is closed.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.closed:
			return
		case msg := <-b.outbound:
			b.mu.RLock()
			callbacks := make([]func(OutboundMessage), len(b.subscribers))
			copy(callbacks, b.subscribers)
			b.mu.RUnlock()

			for _, cb := range callbacks {
				go func(callback func(OutboundMessage)) {
					// A panicking subscriber must not take the dispatcher down.
					defer func() {
						_ = recover()
					}()
					callback(msg)
				}(cb)
			}
		}
	}
}

// InboundSize returns the current number of messages in the inbound channel.
func (b *MessageBus) InboundSize() int {
	return len(b.inbound)
}

// OutboundSize returns the current number of messages in the outbound channel.
func (b *MessageBus) OutboundSize() int {
	return len(b.outbound)
}

// Close closes the message bus, stopping all dispatch operations. Safe to
// call more than once.
func (b *MessageBus) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}
