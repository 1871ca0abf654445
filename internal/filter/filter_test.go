package filter

import "testing"

func defaultFilter() Filter {
	return Filter{Prefix: "gg", StripPrefix: true}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		fromMe     bool
		wantGo     bool
		wantReason SkipReason
		wantPrompt string
	}{
		{
			name:       "lowercase trigger",
			text:       "gg what is the capital of France?",
			wantGo:     true,
			wantPrompt: "what is the capital of France?",
		},
		{
			name:       "uppercase trigger",
			text:       "GG hello",
			wantGo:     true,
			wantPrompt: "hello",
		},
		{
			name:       "mixed case trigger",
			text:       "gG hello",
			wantGo:     true,
			wantPrompt: "hello",
		},
		{
			name:       "leading whitespace before trigger",
			text:       "   gg hello",
			wantGo:     true,
			wantPrompt: "hello",
		},
		{
			name:       "no trigger",
			text:       "hello there",
			wantReason: SkipNoTrigger,
		},
		{
			name:       "trigger in the middle does not count",
			text:       "well gg hello",
			wantReason: SkipNoTrigger,
		},
		{
			name:       "own message is skipped even with trigger",
			text:       "gg hello",
			fromMe:     true,
			wantReason: SkipSelfMessage,
		},
		{
			name:       "own message without trigger is still a self skip",
			text:       "just chatting",
			fromMe:     true,
			wantReason: SkipSelfMessage,
		},
		{
			name:       "empty text",
			text:       "",
			wantReason: SkipEmptyMessage,
		},
		{
			name:       "whitespace only",
			text:       "   \n\t",
			wantReason: SkipEmptyMessage,
		},
		{
			name:       "bare trigger with nothing to ask",
			text:       "gg",
			wantReason: SkipEmptyPrompt,
		},
		{
			name:       "trigger followed by whitespace only",
			text:       "gg    ",
			wantReason: SkipEmptyPrompt,
		},
		{
			name:       "prefix match without word boundary",
			text:       "ggood morning",
			wantGo:     true,
			wantPrompt: "ood morning",
		},
		{
			name:       "shorter than the prefix",
			text:       "g",
			wantReason: SkipNoTrigger,
		},
	}

	f := defaultFilter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.Evaluate(tt.text, tt.fromMe)
			if d.Proceed != tt.wantGo {
				t.Errorf("Evaluate(%q, %v).Proceed = %v, want %v", tt.text, tt.fromMe, d.Proceed, tt.wantGo)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Evaluate(%q, %v).Reason = %q, want %q", tt.text, tt.fromMe, d.Reason, tt.wantReason)
			}
			if tt.wantGo && d.Prompt != tt.wantPrompt {
				t.Errorf("Evaluate(%q, %v).Prompt = %q, want %q", tt.text, tt.fromMe, d.Prompt, tt.wantPrompt)
			}
		})
	}
}

func TestEvaluate_PrefixRetained(t *testing.T) {
	f := Filter{Prefix: "gg", StripPrefix: false}

	d := f.Evaluate("GG what time is it?", false)
	if !d.Proceed {
		t.Fatalf("Evaluate() should proceed, got reason %q", d.Reason)
	}
	if d.Prompt != "GG what time is it?" {
		t.Errorf("Prompt = %q, want the full text with original casing", d.Prompt)
	}

	// Without stripping there is no empty-prompt case: the trigger itself
	// is the prompt.
	d = f.Evaluate("gg", false)
	if !d.Proceed {
		t.Errorf("Evaluate(%q) with retained prefix should proceed, got reason %q", "gg", d.Reason)
	}
	if d.Prompt != "gg" {
		t.Errorf("Prompt = %q, want %q", d.Prompt, "gg")
	}
}

func TestEvaluate_ReplyToSelf(t *testing.T) {
	f := Filter{Prefix: "gg", StripPrefix: true, ReplyToSelf: true}

	d := f.Evaluate("gg ping", true)
	if !d.Proceed {
		t.Errorf("Evaluate() with ReplyToSelf should proceed, got reason %q", d.Reason)
	}
	if d.Prompt != "ping" {
		t.Errorf("Prompt = %q, want %q", d.Prompt, "ping")
	}

	// The trigger check still applies to own messages.
	d = f.Evaluate("no trigger here", true)
	if d.Reason != SkipNoTrigger {
		t.Errorf("Reason = %q, want %q", d.Reason, SkipNoTrigger)
	}
}

func TestEvaluate_CustomPrefix(t *testing.T) {
	f := Filter{Prefix: "!ask", StripPrefix: true}

	d := f.Evaluate("!ASK how tall is Everest?", false)
	if !d.Proceed {
		t.Fatalf("Evaluate() should proceed, got reason %q", d.Reason)
	}
	if d.Prompt != "how tall is Everest?" {
		t.Errorf("Prompt = %q, want %q", d.Prompt, "how tall is Everest?")
	}

	if d := f.Evaluate("gg hello", false); d.Reason != SkipNoTrigger {
		t.Errorf("Reason = %q, want %q for the wrong prefix", d.Reason, SkipNoTrigger)
	}
}
