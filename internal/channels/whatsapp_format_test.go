package channels

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormatReply(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{
			name:   "plain short reply",
			text:   "The capital of France is Paris.",
			maxLen: 200,
			want:   "🤖 _The capital of France is Paris._",
		},
		{
			name:   "surrounding whitespace trimmed",
			text:   "  hello there \n",
			maxLen: 200,
			want:   "🤖 _hello there_",
		},
		{
			name:   "leading emoji stripped",
			text:   "👋 Hi! How can I help?",
			maxLen: 200,
			want:   "🤖 _Hi! How can I help?_",
		},
		{
			name:   "double-star bold becomes whatsapp bold",
			text:   "This is **important** news",
			maxLen: 200,
			want:   "🤖 _This is *important* news_",
		},
		{
			name:   "truncated at word boundary",
			text:   "one two three four five",
			maxLen: 12,
			want:   "🤖 _one two..._",
		},
		{
			name:   "single long word hard cut",
			text:   "abcdefghijklmnop",
			maxLen: 10,
			want:   "🤖 _abcdefghij..._",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReply(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("FormatReply(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatReply_RespectsRuneLimit(t *testing.T) {
	text := strings.Repeat("député ", 100)
	got := FormatReply(text, 200)

	inner := strings.TrimSuffix(strings.TrimPrefix(got, "🤖 _"), "_")
	if !strings.HasSuffix(inner, "...") {
		t.Fatalf("long reply not truncated: %q", inner)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(inner, "...")); n > 200 {
		t.Errorf("truncated reply is %d runes, want <= 200", n)
	}
}

func TestNormalizeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "just words", "just words"},
		{"bold converted", "**bold** text", "*bold* text"},
		{"header flattened", "# Title\nbody", "Title\nbody"},
		{"blockquote flattened", "> quoted line", "quoted line"},
		{"inline code unwrapped", "run `go test` now", "run go test now"},
		{"fenced block unwrapped", "```go\nfmt.Println(1)\n```", "fmt.Println(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMarkdown(tt.text); got != tt.want {
				t.Errorf("NormalizeMarkdown(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripLeadingEmoji(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no emoji", "hello", "hello"},
		{"single emoji", "😀 hello", "hello"},
		{"emoji with variation selector", "☀️ sunny", "sunny"},
		{"stacked emoji", "🎉🎉 party", "party"},
		{"flag", "🇫🇷 bonjour", "bonjour"},
		{"emoji mid-text kept", "good 👍 job", "good 👍 job"},
		{"only emoji", "🤖", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripLeadingEmoji(tt.text); got != tt.want {
				t.Errorf("StripLeadingEmoji(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
