package screen

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Minimum lengths enforced before anything is sent.
const (
	MinNameLength     = 3
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationForm is the sign-up form.
type RegistrationForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string
	Password string
}

func tooShort(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) < n
}

// ValidateProjectForm checks a project form before submission.
func ValidateProjectForm(f ProjectForm) error {
	if tooShort(f.Name, MinNameLength) {
		return &ValidationError{Field: "name", Message: "name too short (min 3 characters)"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown project status"}
	}
	return nil
}

// ValidateTaskForm checks a task form before submission.
func ValidateTaskForm(f TaskForm) error {
	if tooShort(f.Title, MinNameLength) {
		return &ValidationError{Field: "title", Message: "title too short (min 3 characters)"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown task status"}
	}
	return nil
}

// ValidateRegistration checks the sign-up form. Checks run in field order
// and the first failure is reported.
func ValidateRegistration(f RegistrationForm) error {
	if tooShort(f.Name, MinNameLength) {
		return &ValidationError{Field: "name", Message: "name too short (min 3 characters)"}
	}
	if !emailPattern.MatchString(f.Email) {
		return &ValidationError{Field: "email", Message: "invalid email"}
	}
	if utf8.RuneCountInString(f.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "password too short (min 6 characters)"}
	}
	if f.Password != f.ConfirmPassword {
		return &ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// ValidateLogin checks the sign-in form.
func ValidateLogin(f LoginForm) error {
	if strings.TrimSpace(f.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if f.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}
