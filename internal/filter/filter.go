// Package filter decides which inbound messages deserve an AI reply.
package filter

import "strings"

// SkipReason explains why a message was filtered out. The values land in
// logs, so they are stable codes rather than prose.
type SkipReason string

const (
	SkipNone         SkipReason = ""
	SkipSelfMessage  SkipReason = "SELF_MESSAGE"
	SkipEmptyMessage SkipReason = "EMPTY_MESSAGE"
	SkipNoTrigger    SkipReason = "NO_TRIGGER"
	SkipEmptyPrompt  SkipReason = "EMPTY_PROMPT"
)

// Decision is the outcome of evaluating one message.
type Decision struct {
	// Proceed is true when the message should be answered.
	Proceed bool
	// Reason explains a negative decision; empty when Proceed is true.
	Reason SkipReason
	// Prompt is the text to hand to the model, already stripped of the
	// trigger prefix when stripping is enabled.
	Prompt string
}

// Filter holds the trigger rules for one deployment.
type Filter struct {
	// Prefix is the case-insensitive trigger the text must start with.
	Prefix string
	// StripPrefix removes the trigger from the prompt handed to the model.
	StripPrefix bool
	// ReplyToSelf lets messages sent by the bot itself qualify. Off by
	// default so the bot cannot answer its own replies.
	ReplyToSelf bool
}

// Evaluate decides whether one message should be answered. It is a pure
// function: no I/O, no logging, no clock. The self-message check runs first
// and independently of the trigger check.
func (f Filter) Evaluate(text string, fromMe bool) Decision {
	if fromMe && !f.ReplyToSelf {
		return Decision{Reason: SkipSelfMessage}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Decision{Reason: SkipEmptyMessage}
	}

	// Plain prefix match, not a word match: "ggood morning" triggers too.
	if len(trimmed) < len(f.Prefix) || !strings.EqualFold(trimmed[:len(f.Prefix)], f.Prefix) {
		return Decision{Reason: SkipNoTrigger}
	}

	prompt := trimmed
	if f.StripPrefix {
		prompt = strings.TrimSpace(trimmed[len(f.Prefix):])
		if prompt == "" {
			return Decision{Reason: SkipEmptyPrompt}
		}
	}

	return Decision{Proceed: true, Prompt: prompt}
}
