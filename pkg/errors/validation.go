package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNodeID validates a CV node identifier for safety and correctness.
// Node ids end up in URLs, file paths, and database keys, so the rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 128 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidNode, "node id too long (max 128 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNode, "node id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// nodeIDRegex matches the canonical slug form used for generated node ids.
var nodeIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateNodeIDSlug validates a node id against the canonical slug form:
// lowercase alphanumerics and hyphens, starting with an alphanumeric.
// Stricter than ValidateNodeID; used when minting new ids.
func ValidateNodeIDSlug(id string) error {
	if err := ValidateNodeID(id); err != nil {
		return err
	}

	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidNode, "invalid node id slug: %q", id)
	}

	return nil
}

// ValidateLabel validates a node label supplied through the editing API.
// Labels are rendered verbatim, so only length and control characters are
// restricted here.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	const maxLabelLength = 200
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// emailRegex is a pragmatic email shape check, not full RFC 5322.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail validates an email address used for edit authorization.
func ValidateEmail(email string) error {
	if email == "" {
		return New(ErrCodeInvalidInput, "email cannot be empty")
	}

	if len(email) > 254 {
		return New(ErrCodeInvalidInput, "email too long")
	}

	if !emailRegex.MatchString(email) {
		return New(ErrCodeInvalidInput, "invalid email address: %q", email)
	}

	return nil
}
