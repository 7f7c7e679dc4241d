// Package validation contains input validation rules shared by handlers and services.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"campusfind/internal/models"
)

const (
	maxEmailLength       = 254
	minPasswordLength    = 8
	maxPasswordLength    = 128
	minTitleLength       = 3
	maxTitleLength       = 255
	minDescriptionLength = 10
	maxDescriptionLength = 2000
	minLocationLength    = 3
	maxLocationLength    = 255
	maxSearchQueryLength = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?@[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?\.[a-zA-Z]{2,}$`)

// ValidateEmail checks email format and length.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLength {
		return errors.New("email address is too long")
	}
	if strings.Contains(email, "..") || !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword enforces minimum password strength.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain upper and lower case letters and a digit")
	}
	return nil
}

// ValidateName checks the display name of a user.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if len(name) > 255 {
		return errors.New("name must be at most 255 characters")
	}
	return nil
}

// SanitizeText trims, strips HTML tags and truncates free-text input.
func SanitizeText(text string, maxLength int) string {
	text = strings.TrimSpace(text)
	text = htmlTagRegex.ReplaceAllString(text, "")
	if maxLength > 0 && len(text) > maxLength {
		text = text[:maxLength]
	}
	return strings.TrimSpace(text)
}

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// ItemInput carries the raw fields of an item report before validation.
type ItemInput struct {
	Title       string
	Description string
	Category    string
	ItemType    string
	Location    string
	Date        string
}

// ValidateItemInput validates and sanitizes an item report. On success the
// returned item carries the cleaned fields; otherwise a validation error
// naming the first offending field is returned.
func ValidateItemInput(in ItemInput) (*models.Item, error) {
	title := SanitizeText(in.Title, maxTitleLength)
	if len(title) < minTitleLength {
		return nil, models.NewValidationError(fmt.Sprintf("Title must be at least %d characters long", minTitleLength))
	}

	description := SanitizeText(in.Description, maxDescriptionLength)
	if len(description) < minDescriptionLength {
		return nil, models.NewValidationError(fmt.Sprintf("Description must be at least %d characters long", minDescriptionLength))
	}

	category := models.ItemCategory(SanitizeText(in.Category, 50))
	if !category.Valid() {
		return nil, models.NewValidationError("Category must be one of: electronics, documents, clothing, accessories, books, others")
	}

	itemType := models.ItemType(SanitizeText(in.ItemType, 20))
	if !itemType.Valid() {
		return nil, models.NewValidationError(`Item type must be either "lost" or "found"`)
	}

	location := SanitizeText(in.Location, maxLocationLength)
	if len(location) < minLocationLength {
		return nil, models.NewValidationError(fmt.Sprintf("Location must be at least %d characters long", minLocationLength))
	}

	date, err := ParseFlexibleTime(in.Date)
	if err != nil {
		return nil, models.NewValidationError("Invalid date format")
	}
	now := time.Now().UTC()
	if date.After(now.AddDate(0, 0, 30)) {
		return nil, models.NewValidationError("Date cannot be more than 30 days in the future")
	}
	if date.Before(now.AddDate(-1, 0, 0)) {
		return nil, models.NewValidationError("Date cannot be more than 1 year in the past")
	}

	return &models.Item{
		Title:       title,
		Description: description,
		Category:    category,
		ItemType:    itemType,
		Location:    location,
		Date:        date,
	}, nil
}

// ParseFlexibleTime accepts RFC 3339 timestamps, datetime-local values
// without a zone, and bare dates.
func ParseFlexibleTime(value string) (time.Time, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, "Z", "+00:00"))
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time value %q", value)
}

// ValidateSearchQuery sanitizes a free-text search query.
func ValidateSearchQuery(q string) (string, error) {
	q = SanitizeText(q, maxSearchQueryLength)
	if strings.ContainsAny(q, ";%_\\") {
		return "", models.NewValidationError("Search query contains invalid characters")
	}
	return q, nil
}
