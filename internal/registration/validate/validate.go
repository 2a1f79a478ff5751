// Package validate holds the per-step form validators. Field errors are
// resolved here and never reach the error classifier.
package validate

import (
	"regexp"
	"strings"

	"onboard/internal/registration/models"
	"onboard/internal/registration/password"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 \-()]{5,20}$`)
)

// Error kinds attached to individual fields.
const (
	ErrRequired = "required"
	ErrFormat   = "format"
	ErrLength   = "length"
	ErrMismatch = "mismatch"
	ErrWeak     = "too_weak"
	ErrTooMany  = "too_many"
)

// PersonalDetails checks the first-step form. Address fields are optional
// and unconstrained.
func PersonalDetails(d models.PersonalDetails) map[string]string {
	errs := make(map[string]string)
	switch {
	case strings.TrimSpace(d.Username) == "":
		errs["username"] = ErrRequired
	case !usernameRegex.MatchString(d.Username):
		errs["username"] = ErrFormat
	}
	if strings.TrimSpace(d.FirstName) == "" {
		errs["firstName"] = ErrRequired
	}
	if strings.TrimSpace(d.LastName) == "" {
		errs["lastName"] = ErrRequired
	}
	if strings.TrimSpace(d.Gender) == "" {
		errs["gender"] = ErrRequired
	}
	switch {
	case strings.TrimSpace(d.DateOfBirth) == "":
		errs["dateOfBirth"] = ErrRequired
	case !dateRegex.MatchString(d.DateOfBirth):
		errs["dateOfBirth"] = ErrFormat
	}
	return errs
}

// Communication checks the second-step form. The first phone entry may be
// blank; filled entries must look like phone numbers.
func Communication(c models.Communication) map[string]string {
	errs := make(map[string]string)
	switch {
	case strings.TrimSpace(c.Email) == "":
		errs["email"] = ErrRequired
	case !emailRegex.MatchString(c.Email):
		errs["email"] = ErrFormat
	}
	if len(c.PhoneNumbers) > 3 {
		errs["phoneNumbers"] = ErrTooMany
	}
	for i, phone := range c.PhoneNumbers {
		if phone == "" && i == 0 {
			continue
		}
		if phone != "" && !phoneRegex.MatchString(phone) {
			errs["phoneNumbers"] = ErrFormat
			break
		}
	}
	return errs
}

// Credentials checks the final-step form: full strength vector plus
// confirmation match.
func Credentials(c models.Credentials) map[string]string {
	errs := make(map[string]string)
	switch {
	case c.Password == "":
		errs["password"] = ErrRequired
	case !password.Strong(c.Password):
		errs["password"] = ErrWeak
	}
	if c.ConfirmPassword != c.Password {
		errs["confirmPassword"] = ErrMismatch
	}
	return errs
}
