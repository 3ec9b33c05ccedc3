package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"storefront/internal/util"
)

// Identity limits.
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 254
	MinSecretLength   = 1
	MaxSecretLength   = 72 // bcrypt ignores anything longer
)

// NormalizeUsername trims surrounding space and applies NFC so visually equal names compare equal.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// NormalizeEmail trims, applies NFC and lower-cases the address.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(email)))
}

// ValidateUsername checks a normalized username.
func ValidateUsername(username string) error {
	if username == "" {
		return util.Validationf("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return util.Validationf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidateEmail checks that a normalized email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return util.Validationf("email is required")
	}
	if len(email) > MaxEmailLength {
		return util.Validationf("email must be at most %d bytes", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return util.Validationf("email %q is not a valid address", email)
	}
	return nil
}

// ValidateSecret checks the raw secret before it is hashed.
func ValidateSecret(secret string) error {
	if len(secret) < MinSecretLength {
		return util.Validationf("password is required")
	}
	if len(secret) > MaxSecretLength {
		return util.Validationf("password must be at most %d bytes", MaxSecretLength)
	}
	return nil
}
