package models

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
)

const MinPasswordLength = 8

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoUpper   = errors.New("password must contain an upper-case letter")
	ErrPasswordNoSpecial = errors.New("password must contain a special character (!@#$...)")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail trims and lower-cases an address and checks that it is a
// bare addr-spec (no display name).
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	var hasDigit, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !hasUpper {
		return ErrPasswordNoUpper
	}
	if !hasSpecial {
		return ErrPasswordNoSpecial
	}
	return nil
}
