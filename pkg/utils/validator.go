package utils

import (
	"errors"
	"regexp"
	"time"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

// ValidateUsername validates username format
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 16 {
		return errors.New("username must be between 3 and 16 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword validates password format
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// eventDateLayouts are the accepted forms for event scheduling input
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseEventDate parses an event date from form input. Malformed dates are
// rejected locally, before anything reaches the store.
func ParseEventDate(value string) (time.Time, error) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("malformed event date")
}
