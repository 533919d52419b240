package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user supplied text (captions, bios, comments,
// messages) before it is stored.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
