package pipeline

import "unicode/utf8"

// DefaultMaxTextChars bounds the document text embedded in any prompt
const DefaultMaxTextChars = 8000

// TruncationMarker is appended when document text is cut
const TruncationMarker = "... [text truncated]"

// TruncateText keeps at most max characters (runes) and appends
// TruncationMarker when anything was dropped
func TruncateText(text string, max int) (string, bool) {
	if max <= 0 {
		max = DefaultMaxTextChars
	}
	if utf8.RuneCountInString(text) <= max {
		return text, false
	}

	count := 0
	for i := range text {
		if count == max {
			return text[:i] + TruncationMarker, true
		}
		count++
	}
	return text, false
}
