package bus

import "time"

// InboundMessage is one webhook message event, normalized for processing.
// EventID is minted at receipt and carried through every log line of the
// event's lifecycle.
type InboundMessage struct {
	EventID    string    `json:"eventId"`
	MessageID  string    `json:"messageId"`
	ChatID     string    `json:"chatId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName,omitempty"`
	Content    string    `json:"content"`
	FromMe     bool      `json:"fromMe"`
	Timestamp  time.Time `json:"timestamp"`
}

// OutboundMessage is a reply on its way to the gateway. ReplyTo carries the
// gateway message ID to quote; empty means a plain send.
type OutboundMessage struct {
	EventID string `json:"eventId"`
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	ReplyTo string `json:"replyTo,omitempty"`
}
