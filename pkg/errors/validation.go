package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier read from user input.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidNode, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id contains invalid control characters")
		}
	}

	return nil
}

// ValidateCommunityCount checks that k lies in [1, n].
func ValidateCommunityCount(k, n int) error {
	if n == 0 {
		return New(ErrCodeEmptyGraph, "graph has no nodes")
	}
	if k < 1 || k > n {
		return New(ErrCodeInvalidCommunityCount, "k=%d outside [1,%d]", k, n)
	}
	return nil
}

// ValidatePath validates an output or input file path for safety.
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

// ValidateRunID validates a run identifier received over the API.
// Run ids are uuids; anything with path separators is rejected early.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}
	if strings.ContainsAny(id, "/\\.") {
		return New(ErrCodeInvalidInput, "run id contains invalid characters")
	}
	return nil
}
