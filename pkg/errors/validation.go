package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// boardNameRegex matches valid board names: the name becomes the basename of
// every output file, so it is restricted to filesystem-safe characters.
var boardNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBoardName validates the board name used as the output file basename.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateBoardName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "board name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "board name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "board name contains control characters")
		}
	}

	if !boardNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid board name: %q", name)
	}

	return nil
}

// ValidateOutputDir validates an output directory path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
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

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
