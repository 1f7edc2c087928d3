package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ValidateUsername validates account usernames
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	if len(trimmed) > 150 {
		return errors.New("username is too long (max 150 characters)")
	}

	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return errors.New("username may only contain letters, digits and @/./+/-/_")
	}

	return nil
}
