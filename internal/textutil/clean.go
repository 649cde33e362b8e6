package textutil

import "strings"

// Clean normalizes raw OCR output: runes outside the allow-set (letters,
// digits, whitespace and `.,!?-`) become a single space, whitespace runs
// collapse to one space, and the result is trimmed. Idempotent:
// Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	space := true // swallow leading whitespace
	for _, r := range raw {
		if !allowed(r) || isSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		b.WriteRune(r)
		space = false
	}
	return strings.TrimRight(b.String(), " ")
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == ',' || r == '!' || r == '?' || r == '-':
		return true
	default:
		return isSpace(r)
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// chromeStrings are UI chrome fragments common in social screenshots that
// carry no classification signal. Matched case-insensitively per line token.
var chromeStrings = []string{
	"see translation",
	"sponsored",
	"suggested for you",
	"view all comments",
	"add a comment",
	"send message",
	"tap to see more",
}

// StripChrome removes known social-UI chrome phrases from cleaned text while
// leaving the remaining content intact. Input is assumed cleaned.
func StripChrome(text string) string {
	lower := strings.ToLower(text)
	for _, chrome := range chromeStrings {
		for {
			idx := strings.Index(lower, chrome)
			if idx < 0 {
				break
			}
			text = text[:idx] + text[idx+len(chrome):]
			lower = lower[:idx] + lower[idx+len(chrome):]
		}
	}
	return Clean(text)
}
