package errs

import (
	"strings"
	"unicode"
)

// ValidateFullName validates a repository full name ("owner/name").
//
// Full names become filesystem paths when the collection store persists a
// snapshot (language_matrices/<owner>/<name>.csv), so the validation rejects
// anything that could escape the snapshot folder:
//   - No empty owner or name
//   - Exactly one slash separator
//   - No control characters or null bytes
//   - No path traversal sequences
//   - Maximum length of 256 characters
func ValidateFullName(fullName string) error {
	if fullName == "" {
		return New(ErrCodeInvalidRepo, "repository full name cannot be empty")
	}
	if len(fullName) > 256 {
		return New(ErrCodeInvalidRepo, "repository full name too long (max 256 characters)")
	}

	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return New(ErrCodeInvalidRepo, "repository full name must be owner/name: %q", fullName)
	}

	for _, r := range fullName {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRepo, "repository full name contains control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(fullName, pattern) {
			return New(ErrCodeInvalidRepo, "repository full name contains invalid sequence: %q", pattern)
		}
	}

	return nil
}
