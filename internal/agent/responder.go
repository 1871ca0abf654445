package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/bus"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/channels"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/filter"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/providers"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

// Responder is the processing loop that consumes inbound messages,
// filters them, asks the model for an answer and publishes the reply.
// Every inbound event ends in exactly one terminal state: filtered,
// failed, or handed to the dispatcher.
type Responder struct {
	bus      *bus.MessageBus
	provider providers.Provider
	gateway  *waha.Client
	cfg      *config.Config
	log      *zap.Logger

	filter filter.Filter
	seen   *SeenCache

	running bool
	mu      sync.RWMutex

	// stopCh is used to signal the loop to stop
	stopCh chan struct{}
}

// ResponderConfig contains the dependencies for creating a new Responder.
type ResponderConfig struct {
	Bus      *bus.MessageBus
	Provider providers.Provider
	Gateway  *waha.Client
	Config   *config.Config
	Logger   *zap.Logger
}

// NewResponder creates a new responder with the given configuration.
func NewResponder(rc ResponderConfig) (*Responder, error) {
	if rc.Bus == nil {
		return nil, fmt.Errorf("message bus is required")
	}
	if rc.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if rc.Gateway == nil {
		return nil, fmt.Errorf("gateway client is required")
	}
	if rc.Config == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := rc.Config
	return &Responder{
		bus:      rc.Bus,
		provider: rc.Provider,
		gateway:  rc.Gateway,
		cfg:      cfg,
		log:      logger,
		filter: filter.Filter{
			Prefix:      cfg.Trigger.Prefix,
			StripPrefix: cfg.Trigger.StripPrefix,
			ReplyToSelf: cfg.Trigger.ReplyToSelf,
		},
		seen:   NewSeenCache(cfg.Session.DedupCacheSize),
		stopCh: make(chan struct{}),
	}, nil
}

// Run starts the responder and processes messages until the context is
// cancelled or Stop is called. Each message runs in its own goroutine
// so a slow completion never blocks the rest of the queue.
func (r *Responder) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("responder is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	// Start outbound message dispatcher
	go r.bus.DispatchOutbound(ctx)

	r.log.Info("responder started",
		zap.String("provider", r.provider.Name()),
		zap.String("model", r.cfg.AI.Model),
		zap.String("trigger", r.cfg.Trigger.Prefix))

	for {
		select {
		case <-ctx.Done():
			r.log.Info("responder stopped", zap.String("reason", "context cancelled"))
			return ctx.Err()
		case <-r.stopCh:
			r.log.Info("responder stopped", zap.String("reason", "stop requested"))
			return nil
		default:
			msg, err := r.bus.ConsumeInboundWithTimeout(ctx, 1*time.Second)
			if errors.Is(err, bus.ErrTimeout) {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Warn("failed to consume inbound message", zap.Error(err))
				continue
			}

			go r.process(ctx, msg)
		}
	}
}

// Stop signals the responder to stop processing.
func (r *Responder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		close(r.stopCh)
	}
}

// IsRunning returns whether the responder is currently running.
func (r *Responder) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// process drives a single inbound message to its terminal state.
func (r *Responder) process(ctx context.Context, msg bus.InboundMessage) {
	if msg.MessageID != "" && r.seen.Seen(msg.MessageID) {
		r.log.Debug("duplicate message ignored",
			zap.String("event_id", msg.EventID),
			zap.String("message_id", msg.MessageID))
		return
	}

	decision := r.filter.Evaluate(msg.Content, msg.FromMe)
	if !decision.Proceed {
		r.log.Info("FILTERED_OUT",
			zap.String("event_id", msg.EventID),
			zap.String("chat_id", msg.ChatID),
			zap.String("reason", string(decision.Reason)))
		return
	}

	// Mark the chat as read before answering; this is cosmetic, a
	// failure must not stop the reply.
	if err := r.gateway.SendSeen(ctx, msg.ChatID, msg.MessageID); err != nil {
		r.log.Debug("sendSeen failed",
			zap.String("chat_id", msg.ChatID),
			zap.Error(err))
	}

	if r.cfg.Reply.Delay > 0 {
		select {
		case <-time.After(r.cfg.Reply.Delay):
		case <-ctx.Done():
			return
		}
	}

	reply, err := r.complete(ctx, decision.Prompt)
	if err != nil {
		r.log.Error("AI_FAILED",
			zap.String("event_id", msg.EventID),
			zap.String("chat_id", msg.ChatID),
			zap.Error(err))
		return
	}

	out := bus.OutboundMessage{
		EventID: msg.EventID,
		ChatID:  msg.ChatID,
		Content: channels.FormatReply(reply, r.cfg.Reply.MaxLength),
	}
	if r.cfg.Reply.Quote {
		out.ReplyTo = msg.MessageID
	}

	if err := r.bus.PublishOutbound(out); err != nil {
		r.log.Warn("failed to publish reply",
			zap.String("event_id", msg.EventID),
			zap.Error(err))
	}
}

// complete asks the model for an answer to the prompt, bounded by the
// configured completion timeout.
func (r *Responder) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.AI.Timeout)
	defer cancel()

	messages := make([]providers.ChatMessage, 0, 2)
	if r.cfg.AI.SystemPrompt != "" {
		messages = append(messages, providers.ChatMessage{Role: "system", Content: r.cfg.AI.SystemPrompt})
	}
	messages = append(messages, providers.ChatMessage{Role: "user", Content: prompt})

	start := time.Now()
	resp, err := r.provider.Chat(ctx, providers.ChatRequest{
		Messages:    messages,
		Model:       r.cfg.AI.Model,
		MaxTokens:   r.cfg.AI.MaxTokens,
		Temperature: r.cfg.AI.Temperature,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}

	r.log.Debug("reply generated",
		zap.Duration("took", time.Since(start)),
		zap.String("finish_reason", resp.FinishReason))
	return content, nil
}
