package errors

import (
	"strings"
	"unicode"
)

// maxItemIDLength bounds item identifiers taken from manifests and API bodies.
const maxItemIDLength = 256

// ValidateItemID validates an item identifier.
// IDs end up in SVG attributes and cache keys, so control characters and
// quoting characters are rejected.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "item id cannot be empty")
	}

	if len(id) > maxItemIDLength {
		return New(ErrCodeInvalidInput, "item id too long (max %d characters)", maxItemIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "item id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "\"'<>&") {
		return New(ErrCodeInvalidInput, "item id contains invalid characters: %q", id)
	}

	return nil
}

// ValidatePath validates a file path referenced from a manifest.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative to the manifest)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// IsRemoteURL reports whether s looks like an http(s) URL rather than a local path.
func IsRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
