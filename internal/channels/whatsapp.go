package channels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThaMacroMan/Whatsapp-Agent/internal/bus"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/config"
	"github.com/ThaMacroMan/Whatsapp-Agent/internal/waha"
)

const groupSuffix = "@g.us"

// WebhookEvent is the envelope WAHA POSTs to the webhook endpoint.
// Unknown fields are ignored on purpose; the gateway sends far more
// than the responder needs.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Session string         `json:"session"`
	Payload WebhookPayload `json:"payload"`
}

// WebhookPayload carries the message fields the responder cares about.
type WebhookPayload struct {
	ID          json.RawMessage `json:"id"`
	Timestamp   int64           `json:"timestamp"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	FromMe      bool            `json:"fromMe"`
	Body        string          `json:"body"`
	Type        string          `json:"type"`
	Participant string          `json:"participant"`
	Sender      WebhookSender   `json:"sender"`
}

// WebhookSender identifies who wrote the message, when the gateway knows.
type WebhookSender struct {
	Name string `json:"name"`
}

type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Uptime    int64  `json:"uptime"`
	Session   string `json:"session,omitempty"`
}

// WhatsAppChannel implements the Channel interface over a WAHA gateway.
// Inbound messages arrive as webhook POSTs from the gateway; outbound
// replies go back through the gateway's REST API.
type WhatsAppChannel struct {
	BaseChannel
	addr    string
	client  *waha.Client
	log     *zap.Logger
	server  *http.Server
	started time.Time
}

// NewWhatsAppChannel creates a new WhatsApp channel instance.
func NewWhatsAppChannel(cfg *config.Config, client *waha.Client, msgBus *bus.MessageBus, logger *zap.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		BaseChannel: NewBaseChannel("whatsapp", msgBus),
		addr:        cfg.Server.Addr,
		client:      client,
		log:         logger,
	}
}

// Router builds the HTTP surface: the webhook intake plus the probe
// endpoints. Exposed so tests can drive the handlers directly.
func (c *WhatsAppChannel) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/webhook", c.handleWebhookCheck)
	r.Post("/webhook", c.handleWebhook)
	r.Get("/health", c.handleHealth)
	r.Get("/availability", c.handleAvailability)

	return r
}

// Start binds the webhook server and subscribes the dispatcher to the
// outbound queue.
func (c *WhatsAppChannel) Start(ctx context.Context) error {
	if c.IsRunning() {
		return fmt.Errorf("whatsapp channel is already running")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", c.addr, err)
	}

	c.server = &http.Server{
		Handler:           c.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.started = time.Now()
	c.setRunning(true)

	// Send logs the dispatch outcome itself, success or failure.
	c.getBus().SubscribeOutbound(func(msg bus.OutboundMessage) {
		_ = c.Send(msg)
	})

	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error("webhook server stopped", zap.Error(err))
			c.setRunning(false)
		}
	}()

	c.log.Info("webhook server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the webhook server.
func (c *WhatsAppChannel) Stop() error {
	if !c.IsRunning() {
		return nil
	}
	c.setRunning(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("webhook server shutdown: %w", err)
	}

	c.log.Info("whatsapp channel stopped")
	return nil
}

// Send delivers one outbound message through the gateway. A single
// attempt, no retry: exactly one DISPATCH_SUCCEEDED or DISPATCH_FAILED
// line is logged per message.
func (c *WhatsAppChannel) Send(msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("whatsapp channel is not running")
	}

	start := time.Now()
	id, err := c.client.SendText(context.Background(), msg.ChatID, msg.Content, msg.ReplyTo)
	if err != nil {
		c.log.Error("DISPATCH_FAILED",
			zap.String("event_id", msg.EventID),
			zap.String("chat_id", msg.ChatID),
			zap.Error(err))
		return err
	}

	c.log.Info("DISPATCH_SUCCEEDED",
		zap.String("event_id", msg.EventID),
		zap.String("chat_id", msg.ChatID),
		zap.String("message_id", id),
		zap.Duration("took", time.Since(start)))
	return nil
}

// handleWebhook ingests one gateway event. The gateway treats any
// non-200 as a delivery failure and retries, so every path out of here
// answers 200; problems are logged instead.
func (c *WhatsAppChannel) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		c.log.Warn("webhook body rejected", zap.Error(err))
		c.writeJSON(w, webhookResponse{Status: "error", Detail: "invalid JSON payload"})
		return
	}

	if event.Event != "message" && event.Event != "message.any" {
		c.log.Debug("webhook event ignored", zap.String("event", event.Event))
		c.writeJSON(w, webhookResponse{Status: "ok"})
		return
	}

	p := event.Payload
	if p.Type != "" && p.Type != "chat" && p.Type != "text" {
		c.log.Debug("non-text message ignored",
			zap.String("type", p.Type),
			zap.String("from", p.From))
		c.writeJSON(w, webhookResponse{Status: "ok"})
		return
	}
	if strings.TrimSpace(p.Body) == "" {
		c.log.Debug("empty message ignored", zap.String("from", p.From))
		c.writeJSON(w, webhookResponse{Status: "ok"})
		return
	}

	senderID := p.From
	if p.Participant != "" {
		senderID = p.Participant
	}
	ts := time.Now()
	if p.Timestamp > 0 {
		ts = time.Unix(p.Timestamp, 0)
	}

	msg := bus.InboundMessage{
		EventID:    uuid.NewString(),
		MessageID:  waha.ExtractID(p.ID),
		ChatID:     resolveChatID(p.From, p.To, p.FromMe),
		SenderID:   senderID,
		SenderName: p.Sender.Name,
		Content:    p.Body,
		FromMe:     p.FromMe,
		Timestamp:  ts,
	}

	c.log.Info("RECEIVED",
		zap.String("event_id", msg.EventID),
		zap.String("message_id", msg.MessageID),
		zap.String("chat_id", msg.ChatID),
		zap.String("sender", msg.SenderID),
		zap.Bool("from_me", msg.FromMe))

	if err := c.getBus().TryPublishInbound(msg); err != nil {
		c.log.Error("inbound queue full, dropping message",
			zap.String("event_id", msg.EventID),
			zap.Error(err))
	}

	c.writeJSON(w, webhookResponse{Status: "ok"})
}

// handleWebhookCheck answers the readiness probe the gateway (and
// curious operators) hit with GET.
func (c *WhatsAppChannel) handleWebhookCheck(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, webhookResponse{Status: "ok", Message: "Webhook endpoint is ready"})
}

func (c *WhatsAppChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, healthResponse{Status: "healthy", Service: "whatsapp-agent"})
}

// handleAvailability reports uptime and, when the gateway answers in
// time, the session status.
func (c *WhatsAppChannel) handleAvailability(w http.ResponseWriter, r *http.Request) {
	resp := availabilityResponse{
		Available: true,
		Uptime:    int64(time.Since(c.started).Seconds()),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if status, err := c.client.SessionStatus(ctx); err == nil {
		resp.Session = status.Status
	} else {
		c.log.Debug("session status probe failed", zap.Error(err))
	}

	c.writeJSON(w, resp)
}

func (c *WhatsAppChannel) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.log.Warn("failed to write response", zap.Error(err))
	}
}

// resolveChatID picks the chat a reply must go back to. Group IDs end
// in @g.us and can sit on either side depending on who wrote the
// message; for direct chats the counterparty is the target.
func resolveChatID(from, to string, fromMe bool) string {
	switch {
	case strings.HasSuffix(from, groupSuffix):
		return from
	case strings.HasSuffix(to, groupSuffix):
		return to
	case fromMe:
		return to
	default:
		return from
	}
}
