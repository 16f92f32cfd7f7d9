package errors

import (
	"strings"
	"unicode"
)

// ValidateFieldName validates a record field name used as a grouping level or
// column field. Dotted names address nested values ("address.city"), so empty
// path segments are rejected.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters
//   - No empty segments (leading, trailing or doubled dots)
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidField, "field name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidField, "field name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "field name contains invalid control characters")
		}
	}

	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return New(ErrCodeInvalidField, "field name %q has an empty path segment", name)
		}
	}

	return nil
}

// ValidatePath validates a local file path handed to a loader.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
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

// ValidateWidth validates a viewport or column width in pixels.
func ValidateWidth(width int) error {
	if width < 0 {
		return New(ErrCodeInvalidWidth, "width cannot be negative: %d", width)
	}
	return nil
}
