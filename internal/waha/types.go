package waha

import "encoding/json"

// Session status values reported by the gateway.
const (
	StatusStopped  = "STOPPED"
	StatusStarting = "STARTING"
	StatusScanQR   = "SCAN_QR_CODE"
	StatusWorking  = "WORKING"
	StatusFailed   = "FAILED"
)

// SessionStatus reports the state of a gateway session.
type SessionStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// IsWorking reports whether the session is authenticated and connected.
func (s SessionStatus) IsWorking() bool {
	return s.Status == StatusWorking
}

// Chat is one entry from the gateway chat list.
type Chat struct {
	ID      string
	Name    string
	IsGroup bool
}

// Group is one entry from the gateway group list.
type Group struct {
	ID           string
	Name         string
	Participants int
}

type sendTextRequest struct {
	Session     string `json:"session"`
	ChatID      string `json:"chatId"`
	Text        string `json:"text"`
	QuotedMsgID string `json:"quotedMsgId,omitempty"`
}

type sendSeenRequest struct {
	Session   string `json:"session"`
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId,omitempty"`
}

type startSessionRequest struct {
	Name   string        `json:"name"`
	Config sessionConfig `json:"config"`
}

type sessionConfig struct {
	Webhooks []webhookConfig `json:"webhooks"`
}

type webhookConfig struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

type stopSessionRequest struct {
	Name string `json:"name"`
}

type joinGroupRequest struct {
	Session    string `json:"session"`
	InviteCode string `json:"inviteCode"`
}

// chatPayload tolerates both id shapes the gateway engines produce:
// a plain string or an object with a _serialized field.
type chatPayload struct {
	ID      json.RawMessage `json:"id"`
	Name    string          `json:"name"`
	IsGroup bool            `json:"isGroup"`
}

type groupPayload struct {
	ID           json.RawMessage   `json:"id"`
	Name         string            `json:"name"`
	Subject      string            `json:"subject"`
	Participants []json.RawMessage `json:"participants"`
}

// ExtractID pulls an identifier out of a gateway JSON fragment. Depending on
// the WAHA engine, id fields arrive either as a plain string or as an object
// with a _serialized member.
func ExtractID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Serialized string `json:"_serialized"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Serialized
	}
	return ""
}
