package validation

import (
	"regexp"
	"unicode"
)

var (
	// emailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// handleRegex allows letters, numbers and underscores
	handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	// titleRegex allows letters, numbers and spaces
	titleRegex = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidHandle checks the account handle rules: 3-20 characters, letters,
// numbers and underscores only.
func IsValidHandle(handle string) bool {
	if len(handle) < 3 || len(handle) > 20 {
		return false
	}
	return handleRegex.MatchString(handle)
}

// IsValidTitle checks the organization title rules: 3-50 characters, letters,
// numbers and spaces only.
func IsValidTitle(title string) bool {
	if len(title) < 3 || len(title) > 50 {
		return false
	}
	return titleRegex.MatchString(title)
}

// IsValidPassword checks password strength
func IsValidPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 20 {
		return false, "Password must be at most 20 characters"
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasNumber {
		return false, "Password must contain at least one number"
	}
	if !hasSpecial {
		return false, "Password must contain at least one special character"
	}

	return true, ""
}
