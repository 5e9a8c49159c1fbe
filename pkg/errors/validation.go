package errors

import (
	"strings"
	"unicode"
)

// ValidateSectionID validates a section identifier received from a client.
// Identifiers are opaque, but they end up in URLs, HTML attributes and cache
// keys, so control characters and path separators are rejected.
func ValidateSectionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "section id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "section id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "section id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "section id cannot contain path separators")
	}

	return nil
}

// ValidatePath validates a local file path given on the command line or in
// the config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
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

	if !IsURL(rawURL) {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidateSource validates a diagram or records source, which is either a
// local path or an http(s) URL.
func ValidateSource(src string) error {
	if IsURL(src) {
		return ValidateURL(src)
	}
	return ValidatePath(src)
}
