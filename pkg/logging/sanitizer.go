// Package logging provides helpers to keep credentials out of logs and
// error payloads.
package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Pattern to match bearer tokens in header dumps or error messages.
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._\-]+`)

	// Pattern to match x-api-key headers.
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(x-api-key:\s*)\S+`)

	// Pattern to match key=value style credentials.
	apiKeyParamPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|token)=[A-Za-z0-9._\-]{8,}`)

	// Pattern to match provider secret keys (sk-..., sk-ant-...).
	secretKeyPattern = regexp.MustCompile(`sk-[A-Za-z0-9_\-]{8,}`)
)

// Sanitize removes credential material from a string before it is logged or
// returned in an HTTP error payload.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	sanitized := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = apiKeyHeaderPattern.ReplaceAllString(sanitized, "${1}"+RedactedText)
	sanitized = apiKeyParamPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = secretKeyPattern.ReplaceAllString(sanitized, RedactedText)

	return sanitized
}

// SanitizeError sanitizes an error message that might contain sensitive
// data. Use this before logging any error from completion providers.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}
