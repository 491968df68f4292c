package transcript

import "unicode"

// scriptCounts tallies the alphabetic content of a string by script family.
type scriptCounts struct {
	latin int
	cjk   int
}

func countScripts(text string) scriptCounts {
	var counts scriptCounts
	for _, r := range text {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			counts.cjk++
		case r < 0x80 && unicode.IsLetter(r):
			counts.latin++
		}
	}
	return counts
}

// InferLanguage guesses the language of transcribed text from its script
// makeup, restricted to the allowed set. Whisper occasionally reports a
// language outside the expected set for noisy audio; this recovers a usable
// tag from the text itself. Returns the first allowed language when the text
// offers no signal.
func InferLanguage(text string, allowed []string) string {
	if len(allowed) == 0 {
		return "unknown"
	}

	counts := countScripts(text)
	total := counts.latin + counts.cjk
	if total == 0 {
		return allowed[0]
	}

	latinRatio := float64(counts.latin) / float64(total)
	if contains(allowed, "en") && latinRatio > 0.6 {
		return "en"
	}
	if contains(allowed, "zh") {
		return "zh"
	}
	return allowed[0]
}

// PredominantlyLatin reports whether text is mostly Latin-script letters,
// with more Latin than CJK content. The translator uses this to decide which
// segments need translating.
func PredominantlyLatin(text string, threshold float64) bool {
	counts := countScripts(text)
	total := counts.latin + counts.cjk
	if total == 0 {
		return false
	}
	ratio := float64(counts.latin) / float64(total)
	return ratio >= threshold && counts.latin > counts.cjk
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
