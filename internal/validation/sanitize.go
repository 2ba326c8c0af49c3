package validation

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and null bytes from user-entered text and trims
// surrounding whitespace. Entities are decoded before the policy runs, so
// encoded markup is stripped like literal markup. The result is HTML-escaped
// text: "&" is stored as "&amp;".
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	for {
		decoded := html.UnescapeString(input)
		if decoded == input {
			break
		}
		input = decoded
	}
	return strings.TrimSpace(textPolicy.Sanitize(input))
}

// CheckLength reports a validation error unless text has between lo and hi
// characters. Sanitized text is measured as displayed, so "&amp;" counts once.
func CheckLength(field, text string, lo, hi int) error {
	n := utf8.RuneCountInString(html.UnescapeString(text))
	if n < lo {
		if lo == 1 {
			return validationf("%s is required", field)
		}
		return validationf("%s must be at least %d characters", field, lo)
	}
	if n > hi {
		return validationf("%s must not exceed %d characters", field, hi)
	}
	return nil
}
