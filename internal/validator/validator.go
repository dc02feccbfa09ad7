// Package validator checks raw form input before anything touches the
// database. Every check returns a human-readable message keyed by field
// name; malformed input is the expected case, never a panic.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	nonDigit       = regexp.MustCompile(`\D`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
	minPasswordLen = 8
	minAge         = 13
	maxAge         = 120
)

// Errors maps a form field to its validation message
type Errors map[string]string

// Add records a message for a field, keeping the first one reported
func (e Errors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// Merge folds other into e, field by field
func (e Errors) Merge(other Errors) {
	for field, message := range other {
		e.Add(field, message)
	}
}

// Required checks presence of trimmed, non-blank values. label is the
// human name shown in the message.
func Required(value, label string) string {
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("%s is required", label)
	}
	return ""
}

// Email validates address format. Uniqueness is the repository's concern.
func Email(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return "Please enter a valid email address"
	}
	return ""
}

// NormalizeEmail returns the storage form of an address. Uniqueness is
// case-insensitive, so addresses are stored lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Phone validates that the number carries an acceptable count of digits
// once formatting punctuation is stripped.
func Phone(phone, label string) string {
	if strings.TrimSpace(phone) == "" {
		return fmt.Sprintf("%s is required", label)
	}
	digits := NormalizePhone(phone)
	if len(digits) < minPhoneDigits {
		return fmt.Sprintf("%s must be at least %d digits", label, minPhoneDigits)
	}
	if len(digits) > maxPhoneDigits {
		return fmt.Sprintf("%s is too long", label)
	}
	return ""
}

// NormalizePhone strips everything but digits for storage
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

// PasswordIssues returns every unmet strength rule so the form can name
// all of them at once instead of the first only.
func PasswordIssues(password string) []string {
	var issues []string
	if len(password) < minPasswordLen {
		issues = append(issues, fmt.Sprintf("be at least %d characters long", minPasswordLen))
	}
	if !upperPattern.MatchString(password) {
		issues = append(issues, "contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(password) {
		issues = append(issues, "contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		issues = append(issues, "contain at least one number")
	}
	if !specialPattern.MatchString(password) {
		issues = append(issues, "contain at least one special character")
	}
	return issues
}

// Password validates strength, enumerating every unmet rule
func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	issues := PasswordIssues(password)
	if len(issues) == 0 {
		return ""
	}
	return "Password must " + strings.Join(issues, ", ")
}

// Name validates person-name fields: 2-50 chars, letters, spaces,
// hyphens and apostrophes only.
func Name(name, label string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Sprintf("%s is required", label)
	}
	if len(trimmed) < 2 {
		return fmt.Sprintf("%s must be at least 2 characters long", label)
	}
	if len(trimmed) > 50 {
		return fmt.Sprintf("%s must be less than 50 characters", label)
	}
	if !namePattern.MatchString(trimmed) {
		return fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", label)
	}
	return ""
}

// DateOfBirth validates a YYYY-MM-DD date against the accepted age range.
// now is injectable so the boundary cases stay testable.
func DateOfBirth(dob string, now time.Time) string {
	if strings.TrimSpace(dob) == "" {
		return "Date of birth is required"
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(dob))
	if err != nil {
		return "Please enter a valid date in YYYY-MM-DD format"
	}
	if parsed.After(now) {
		return "Date of birth cannot be in the future"
	}
	age := now.Year() - parsed.Year()
	if now.Month() < parsed.Month() || (now.Month() == parsed.Month() && now.Day() < parsed.Day()) {
		age--
	}
	if age < minAge {
		return fmt.Sprintf("Patient must be at least %d years old", minAge)
	}
	if age > maxAge {
		return "Please enter a valid date of birth"
	}
	return ""
}

// Gender validates the selection against the accepted options
func Gender(gender string, options []string) string {
	if strings.TrimSpace(gender) == "" {
		return "Gender is required"
	}
	for _, opt := range options {
		if strings.EqualFold(gender, opt) {
			return ""
		}
	}
	return "Please select a valid gender option"
}

// Address validates a free-form address for plausible completeness
func Address(address string) string {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "Address is required"
	}
	if len(trimmed) < 10 {
		return "Please enter a complete address"
	}
	if len(trimmed) > 200 {
		return "Address is too long"
	}
	return ""
}
