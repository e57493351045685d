package commands

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// FormatDuration renders d as "N minute(s)" or "H hour(s) M minute(s)".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	hours, minutes := total/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d %s %d %s", hours, plural(hours, "hour"), minutes, plural(minutes, "minute"))
	}
	return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// ValidEmoji reports whether s looks like a single emoji: one symbol from
// the emoji blocks, or a short sequence (flags, skin tones, ZWJ joins)
// containing at least one. Symbols that render as text by default count
// only when followed by the emoji variation selector.
func ValidEmoji(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > 8 {
		return false
	}
	runes := []rune(s)
	hasEmoji := false
	for i, r := range runes {
		switch {
		case isEmojiRune(r):
			hasEmoji = true
		case isTextSymbol(r):
			if i+1 == len(runes) || runes[i+1] != variationSelector {
				return false
			}
			hasEmoji = true
		case r == 0x20E3:
			hasEmoji = true
		case r == 0x200D, r == variationSelector:
			// joiner
		case r >= 0xE0020 && r <= 0xE007F:
			// tag sequence
		case unicode.IsDigit(r) || r == '#' || r == '*':
			// keycap base
		default:
			return false
		}
	}
	return hasEmoji
}

const variationSelector = 0xFE0F

// isEmojiRune reports symbols that render as emoji on their own.
func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x231A, r == 0x231B, r == 0x23F0, r == 0x23F3:
		return true
	case r >= 0x23E9 && r <= 0x23EC:
		return true
	case r == 0x25FD, r == 0x25FE, r == 0x2B1B, r == 0x2B1C, r == 0x2B50, r == 0x2B55:
		return true
	}
	return false
}

// isTextSymbol reports symbols outside the emoji blocks that have an emoji
// form, selected with U+FE0F.
func isTextSymbol(r rune) bool {
	switch {
	case r == 0x00A9, r == 0x00AE, r == 0x203C, r == 0x2049, r == 0x2122, r == 0x2139:
		return true
	case r >= 0x2194 && r <= 0x2199, r == 0x21A9, r == 0x21AA:
		return true
	case r == 0x2328, r == 0x23CF, r == 0x23F1, r == 0x23F2:
		return true
	case r >= 0x23ED && r <= 0x23EF, r >= 0x23F8 && r <= 0x23FA:
		return true
	case r == 0x24C2, r == 0x25AA, r == 0x25AB, r == 0x25B6, r == 0x25C0, r == 0x25FB, r == 0x25FC:
		return true
	case r >= 0x2934 && r <= 0x2935, r >= 0x2B05 && r <= 0x2B07:
		return true
	case r == 0x3030, r == 0x303D, r == 0x3297, r == 0x3299:
		return true
	}
	return false
}
