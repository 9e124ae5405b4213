package taxonomy

import "strings"

// ContainsWord checks if text contains the word or phrase with word
// boundaries on both sides. "cio" does not match inside "ratio".
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}

	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx == -1 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		// Check character before (if exists)
		okBefore := start == 0 || !isWordChar(text[start-1])
		// Check character after (if exists)
		okAfter := end >= len(text) || !isWordChar(text[end])

		if okBefore && okAfter {
			return true
		}
		offset = start + 1
	}
}

// isWordChar returns true for alphanumeric characters
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// KeywordContext extracts the text surrounding each matched keyword
func KeywordContext(text string, keywords []string, contextSize int) []string {
	textLower := strings.ToLower(text)
	var contexts []string

	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		idx := strings.Index(textLower, kwLower)
		if idx == -1 {
			continue
		}

		start := max(0, idx-contextSize)
		end := min(len(text), idx+len(kw)+contextSize)

		context := text[start:end]
		if start > 0 {
			context = "..." + context
		}
		if end < len(text) {
			context = context + "..."
		}

		contexts = append(contexts, context)
	}

	return contexts
}
