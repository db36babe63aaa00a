package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/youssefsiam38/motoadmin"
)

// MinPasswordLength is the shortest password the login form accepts.
const MinPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateCredentials checks the login form before any API call is made.
// It returns a *motoadmin.ValidationError describing the first problem.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	switch {
	case email == "" || password == "":
		return &motoadmin.ValidationError{Field: "credentials", Message: "Please fill in all fields"}
	case !emailRegex.MatchString(email):
		return &motoadmin.ValidationError{Field: "email", Message: "Please enter a valid email address"}
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return &motoadmin.ValidationError{Field: "password", Message: "Password must be at least 6 characters long"}
	}
	return nil
}

// SafeNext returns next when it is a local path, otherwise fallback.
// It keeps the login redirect from sending an admin to another host.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if strings.HasPrefix(next, "/login") || strings.HasPrefix(next, "/logout") {
		return fallback
	}
	return next
}
