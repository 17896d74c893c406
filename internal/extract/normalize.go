package extract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts extracted text to NFC, collapses every whitespace run
// (newlines included) into a single space and trims the result
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
