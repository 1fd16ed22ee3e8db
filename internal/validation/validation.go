// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateHandle checks that a handle is 3-30 letters, digits or underscores.
func ValidateHandle(handle string) error {
	if IsBlank(handle) {
		return fmt.Errorf("handle must not be empty")
	}
	if !handlePattern.MatchString(handle) {
		return fmt.Errorf("handle must be 3-30 letters, digits or underscores")
	}
	return nil
}

// ValidateEmail checks that email looks like a deliverable address.
func ValidateEmail(email string) error {
	if IsBlank(email) {
		return fmt.Errorf("email must not be empty")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
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
	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}
