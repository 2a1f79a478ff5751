package models

import "time"

// StepCount is the number of user-facing steps in the registration flow:
// personal details, communication, credentials.
const StepCount = 3

// PersonalDetails is the first-step form. Address fields are optional.
type PersonalDetails struct {
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	AddressLine string `json:"addressLine,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Communication is the second-step form. PhoneNumbers holds one to three
// entries; a blank first entry is permitted.
type Communication struct {
	Email        string   `json:"email"`
	PhoneNumbers []string `json:"phoneNumbers"`
}

// Credentials is the final-step form. It is never persisted anywhere -
// RegistrationDraft deliberately has no credentials field.
type Credentials struct {
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

// RegistrationDraft is the recoverable snapshot of in-progress registration
// work. It carries no secrets.
type RegistrationDraft struct {
	Step            int             `json:"step"`
	PersonalDetails PersonalDetails `json:"personalDetails"`
	Communication   Communication   `json:"communication"`
	SavedAt         time.Time       `json:"savedAt"`
}

// UsernameCheck is the outcome of one availability lookup.
type UsernameCheck struct {
	Available   bool     `json:"available"`
	Suggestions []string `json:"suggestions"`
}

// UsernameCheckState is the transient view of the checker exposed to callers.
// Result corresponds only to Candidate; superseded lookups never surface here.
type UsernameCheckState struct {
	Pending   bool           `json:"pending"`
	Candidate string         `json:"candidate,omitempty"`
	Result    *UsernameCheck `json:"result,omitempty"`
}

// AccountCreateRequest is the request assembled for the remote account
// service. Only the first phone number travels with it.
type AccountCreateRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth"`
	Gender       string `json:"gender"`
	Phone        string `json:"phone,omitempty"`
	AuthProvider string `json:"authProvider"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

// AccountCreateResult is the success shape of the remote account service.
type AccountCreateResult struct {
	Success                   bool `json:"success"`
	RequiresEmailVerification bool `json:"requiresEmailVerification"`
}
