package character

import (
	"html"
	"strings"
)

// EscapeMarkup escapes the five HTML-special characters (< > & " ') in
// free text. Records hold raw text; call this at every markup boundary.
func EscapeMarkup(text string) string {
	return html.EscapeString(text)
}

// CapText trims surrounding whitespace and truncates to limit runes. Used
// on the lenient load path so over-long stored values degrade instead of
// being rejected.
func CapText(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	if limit <= 0 {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= limit {
		return trimmed
	}
	return string(runes[:limit])
}

// FallbackFilename is used when sanitization leaves nothing of a name.
const FallbackFilename = "Ranger"

// SanitizeFilename reduces a character name to a filesystem-safe stem:
// ASCII letters, digits, underscore, and hyphen survive, every other rune
// becomes an underscore. An empty result falls back to FallbackFilename.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_") == "" {
		return FallbackFilename
	}
	return out
}
