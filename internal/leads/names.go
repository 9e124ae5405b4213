package leads

import (
	"regexp"
	"strings"
)

var (
	nameSeparators = []string{" - ", " | ", " – ", " — "}

	// "Matt ." style names truncated by the search engine
	truncatedName = regexp.MustCompile(`^[A-Z][a-z]+\s*\.+$`)

	linkedinSuffix = regexp.MustCompile(`\s*[-–—]?\s*\|\s*LinkedIn`)

	genericNames = map[string]bool{
		"angel investor":  true,
		"venture capital": true,
		"linkedin":        true,
		"angel investors": true,
	}
)

// DefaultCommonNames are names too frequent to verify without
// cross-contaminating evidence from namesakes
var DefaultCommonNames = []string{
	"john smith", "david smith", "michael smith", "james smith",
	"mohammed ali", "mohamed ali", "muhammad ali", "ahmed ali",
	"mohammed ahmed", "ahmed khan", "ali khan", "muhammad khan",
	"sara ahmed", "fatima ali",
}

// ExtractName takes the person's name from a result title
func ExtractName(title string) string {
	for _, sep := range nameSeparators {
		if before, _, found := strings.Cut(title, sep); found {
			return strings.TrimSpace(before)
		}
	}
	return strings.TrimSpace(title)
}

// ValidName reports whether name plausibly names a person
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if len(strings.Fields(name)) < 2 {
		return false
	}
	if truncatedName.MatchString(name) {
		return false
	}
	return !genericNames[strings.ToLower(name)]
}

// Ambiguous reports whether the name is too weak an identifier for
// targeted verification, with the reason.
func Ambiguous(name string, common []string) (bool, string) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, c := range common {
		if lower == strings.ToLower(c) {
			return true, "common name"
		}
	}

	parts := strings.Fields(lower)
	if len(parts) < 2 {
		return true, "single token name"
	}

	last := strings.TrimRight(parts[len(parts)-1], ".")
	if len([]rune(last)) <= 1 {
		return true, "single-letter surname"
	}
	if parts[0] == last {
		return true, "first name equals surname"
	}

	return false, ""
}

// CleanTitle drops anything after a "| LinkedIn" suffix
func CleanTitle(title string) string {
	if loc := linkedinSuffix.FindStringIndex(title); loc != nil {
		return strings.TrimSpace(title[:loc[1]])
	}
	return strings.TrimSpace(title)
}

// SoftTruncate cuts text at the first ellipsis
func SoftTruncate(text string) string {
	if before, _, found := strings.Cut(text, "..."); found {
		return strings.TrimSpace(before)
	}
	return text
}
