package channels

import (
	"regexp"
	"strings"
)

var (
	codeBlockRegex  = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9]*\n?)?(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
	boldRegex       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	headerRegex     = regexp.MustCompile(`(?m)^#{1,6}\s+(.*)$`)
	blockquoteRegex = regexp.MustCompile(`(?m)^>\s*(.*)$`)
)

// FormatReply shapes raw model output for WhatsApp delivery: normalize
// the markdown dialect, cap the length, drop a leading emoji and wrap
// the text in italics behind the bot marker.
func FormatReply(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	text = NormalizeMarkdown(text)
	text = truncateAtWord(text, maxLen)
	text = StripLeadingEmoji(text)
	return "🤖 _" + text + "_"
}

// NormalizeMarkdown rewrites common model markdown into the subset
// WhatsApp renders. WhatsApp bold is single asterisks; headers, code
// fences and blockquotes have no equivalent and are flattened to text.
func NormalizeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = codeBlockRegex.ReplaceAllString(text, "$1")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = boldRegex.ReplaceAllString(text, "*$1*")
	text = headerRegex.ReplaceAllString(text, "$1")
	text = blockquoteRegex.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}

// truncateAtWord caps text at maxLen runes, cutting back to the last
// space when one exists so words stay whole, and marks the cut with an
// ellipsis.
func truncateAtWord(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	cut := string(runes[:maxLen])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

// StripLeadingEmoji removes emoji the model likes to open with, so the
// reply marker does not stack with them.
func StripLeadingEmoji(text string) string {
	return strings.TrimLeft(strings.TrimLeftFunc(text, isEmoji), " ")
}

// isEmoji covers the pictograph blocks that show up at the start of
// chat replies, plus the joiners that ride along with them.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs through symbols extended
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, zero-width joiner
		return true
	}
	return false
}
