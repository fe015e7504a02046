package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxUsernameLength = 64
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateUsername enforces the handle format. Uniqueness is checked
// case-insensitively by the persistence layer.
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(trimmed) > maxUsernameLength {
		return fmt.Errorf("%w: username must be <= %d characters", ErrInvalidInput, maxUsernameLength)
	}
	if !usernamePattern.MatchString(trimmed) {
		return fmt.Errorf("%w: username may contain letters, digits, '.', '_' and '-' only", ErrInvalidInput)
	}
	return nil
}

// ValidatePassword enforces the baseline password policy.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be <= %d characters", ErrInvalidInput, maxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must include letters and digits", ErrInvalidInput)
	}

	lowered := strings.ToLower(password)
	for _, banned := range []string{"password", "qwerty", "123456", "letmein"} {
		if strings.Contains(lowered, banned) {
			return fmt.Errorf("%w: password includes weak pattern", ErrInvalidInput)
		}
	}
	return nil
}
