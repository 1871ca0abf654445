package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a WAHA gateway over its REST API. All methods take a
// context and return errors instead of logging; retries are the caller's
// decision (the reply path deliberately makes none).
type Client struct {
	baseURL    string
	session    string
	webhookURL string
	apiKey     string
	client     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the gateway API key, sent as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a gateway client for one session. webhookURL is the
// callback the gateway is told to deliver events to when the session is
// started through this client.
func NewClient(baseURL, session, webhookURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}
	if session == "" {
		return nil, fmt.Errorf("gateway session name is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the session name this client operates on.
func (c *Client) Session() string {
	return c.session
}

// BaseURL returns the gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendText delivers a text message to a chat. quoteMsgID, when non-empty,
// makes the message a quoted reply. Returns the gateway's ID for the sent
// message when the response carries one.
func (c *Client) SendText(ctx context.Context, chatID, text, quoteMsgID string) (string, error) {
	body, err := c.post(ctx, "/api/sendText", sendTextRequest{
		Session:     c.session,
		ChatID:      chatID,
		Text:        text,
		QuotedMsgID: quoteMsgID,
	})
	if err != nil {
		return "", err
	}

	// Engines disagree on the response shape; the ID is informational only.
	var result struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil
	}
	return ExtractID(result.ID), nil
}

// SendSeen marks a chat (optionally a single message) as read.
func (c *Client) SendSeen(ctx context.Context, chatID, messageID string) error {
	_, err := c.post(ctx, "/api/sendSeen", sendSeenRequest{
		Session:   c.session,
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

// SessionStatus fetches the current state of the session.
func (c *Client) SessionStatus(ctx context.Context) (SessionStatus, error) {
	body, err := c.get(ctx, "/api/sessions/"+url.PathEscape(c.session))
	if err != nil {
		return SessionStatus{}, err
	}

	var status SessionStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return SessionStatus{}, fmt.Errorf("decode session status: %w", err)
	}
	return status, nil
}

// StartSession starts the session and registers the webhook callback for
// message events, so the gateway begins delivering to this service.
func (c *Client) StartSession(ctx context.Context) error {
	req := startSessionRequest{
		Name: c.session,
	}
	if c.webhookURL != "" {
		req.Config = sessionConfig{
			Webhooks: []webhookConfig{
				{URL: c.webhookURL, Events: []string{"message"}},
			},
		}
	}
	_, err := c.post(ctx, "/api/sessions/start", req)
	return err
}

// StopSession stops the session.
func (c *Client) StopSession(ctx context.Context) error {
	_, err := c.post(ctx, "/api/sessions/stop", stopSessionRequest{Name: c.session})
	return err
}

// QRCode fetches the pairing QR code for an unauthenticated session.
// Returns the raw image bytes and their content type.
func (c *Client) QRCode(ctx context.Context) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(c.session)+"/auth/qr", nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/png")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", fmt.Errorf("read QR response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", statusError(resp.StatusCode, body)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Chats lists all chats visible to the session.
func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	body, err := c.get(ctx, "/api/chats?session="+url.QueryEscape(c.session))
	if err != nil {
		return nil, err
	}

	var payload []chatPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode chat list: %w", err)
	}

	chats := make([]Chat, 0, len(payload))
	for _, p := range payload {
		id := ExtractID(p.ID)
		chats = append(chats, Chat{
			ID:      id,
			Name:    p.Name,
			IsGroup: p.IsGroup || strings.HasSuffix(id, "@g.us"),
		})
	}
	return chats, nil
}

// Groups lists the groups the session participates in.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	body, err := c.get(ctx, "/api/groups?session="+url.QueryEscape(c.session))
	if err != nil {
		return nil, err
	}

	var payload []groupPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode group list: %w", err)
	}

	groups := make([]Group, 0, len(payload))
	for _, p := range payload {
		name := p.Name
		if name == "" {
			name = p.Subject
		}
		groups = append(groups, Group{
			ID:           ExtractID(p.ID),
			Name:         name,
			Participants: len(p.Participants),
		})
	}
	return groups, nil
}

// JoinGroup joins a group via its invite code and returns the group ID when
// the gateway reports one.
func (c *Client) JoinGroup(ctx context.Context, inviteCode string) (string, error) {
	if inviteCode == "" {
		return "", fmt.Errorf("invite code is required")
	}

	body, err := c.post(ctx, "/api/groups/join", joinGroupRequest{
		Session:    c.session,
		InviteCode: inviteCode,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil
	}
	return ExtractID(result.ID), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// do executes the request and returns the response body. Any non-2xx status
// is an error carrying the status code and a trimmed body excerpt.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func statusError(code int, body []byte) error {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > 256 {
		excerpt = excerpt[:256]
	}
	if excerpt == "" {
		return fmt.Errorf("gateway returned status %d", code)
	}
	return fmt.Errorf("gateway returned status %d: %s", code, excerpt)
}
