package translate

import "strings"

// SplitChunks breaks text into pieces no longer than limit, preferring
// sentence boundaries and falling back to word boundaries for run-on text.
func SplitChunks(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(sentence) > limit {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if len(sentence) > limit {
			chunks = append(chunks, splitWords(sentence, limit)...)
			continue
		}
		current.WriteString(sentence)
	}
	if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
		chunks = append(chunks, trimmed)
	}
	return chunks
}

// splitSentences divides text after terminal punctuation, keeping the
// punctuation and trailing space with the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?', '。', '！', '？':
			end := i + 1
			for end < len(runes) && (runes[end] == ' ' || runes[end] == '\n') {
				end++
			}
			sentences = append(sentences, string(runes[start:end]))
			start = end
			i = end - 1
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func splitWords(sentence string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, word := range strings.Fields(sentence) {
		if current.Len() > 0 && current.Len()+len(word)+1 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
