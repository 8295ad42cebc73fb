package service

import (
	"regexp"
	"strings"
)

// Criteria messages returned in invalid_fields. Clients display them verbatim.
const (
	UsernameCriteria = "Username must have 3 to 32 characters containing letters, numbers, underscores, periods, and dashes. " +
		"Underscores, periods, and dashes cannot be in succession or at the beginning or end of the username."
	PasswordCriteria = "Password must have 8 to 72 characters. " +
		"Contain at least one lowercase and uppercase letter. " +
		"Contain at least one number and one special character (e.g. !@#$%^&*)"
	EmailCriteria = "This email address is invalid to our system."
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores input past 72 bytes
	maxEmailLen    = 255
)

const passwordSymbols = "!@#$%^&*"

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:[._-][A-Za-z0-9]+)*$`)
	emailPattern    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

// ValidationError lists the criteria a submitted form failed.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, "; ")
}

// ValidUsername reports whether username has 3 to 32 characters, contains a letter, and uses
// '.', '_' and '-' only as single separators between alphanumerics.
func ValidUsername(username string) bool {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return false
	}
	if !usernamePattern.MatchString(username) {
		return false
	}
	return strings.IndexFunc(username, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

// ValidPassword reports whether password is 8 to 72 bytes with a lowercase letter, an uppercase
// letter, a digit and one of !@#$%^&*.
func ValidPassword(password string) bool {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return false
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSymbol
}

// ValidEmail reports whether email matches the accepted address pattern.
func ValidEmail(email string) bool {
	return len(email) <= maxEmailLen && emailPattern.MatchString(email)
}

// validateRegistration returns nil or a ValidationError listing every failed criterion in
// username, password, email order.
func validateRegistration(username, password, email string) error {
	var fields []string
	if !ValidUsername(username) {
		fields = append(fields, UsernameCriteria)
	}
	if !ValidPassword(password) {
		fields = append(fields, PasswordCriteria)
	}
	if !ValidEmail(email) {
		fields = append(fields, EmailCriteria)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
