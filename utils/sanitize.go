package utils

import "github.com/microcosm-cc/bluemonday"

// Prayer notes and signatures are plain text; strip all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans user supplied content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
