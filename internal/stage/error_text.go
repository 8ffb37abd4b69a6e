package stage

import "strings"

// sanitizeErrorMessage collapses whitespace so every failure renders on one
// line.
func sanitizeErrorMessage(msg string) string {
	s := strings.Join(strings.Fields(msg), " ")
	if s == "" {
		return "error"
	}
	return s
}
