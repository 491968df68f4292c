package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ToISO2 reduces any recognizable language tag ("zh-TW", "eng", "English")
// to its ISO 639-1 base code. Returns empty string for unparseable input.
func ToISO2(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		// Whisper emits plain lowercase two-letter codes; pass those through
		// even when they are not in the matcher's table.
		lower := strings.ToLower(trimmed)
		if len(lower) == 2 {
			return lower
		}
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName returns the English name of a language tag, or "Unknown" when
// the tag cannot be parsed.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}
