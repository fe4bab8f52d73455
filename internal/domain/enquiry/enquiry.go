// Package enquiry handles customer enquiries sent through the contact form.
package enquiry

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Field length limits.
const (
	MaxNameLen    = 100
	MaxMessageLen = 2000
	MaxEmailLen   = 254
)

// Enquiry is a submitted contact request. QuotedPrice is the product price
// at submission time when the enquiry names a product.
type Enquiry struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Message     string
	ProductCode string
	QuotedPrice decimal.NullDecimal
	CreatedAt   time.Time
}

// Form is the raw contact form input.
type Form struct {
	Name        string
	Email       string
	Phone       string
	Message     string
	ProductCode string
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:        strings.TrimSpace(f.Name),
		Email:       strings.TrimSpace(f.Email),
		Phone:       strings.TrimSpace(f.Phone),
		Message:     strings.TrimSpace(f.Message),
		ProductCode: strings.TrimSpace(f.ProductCode),
	}
}

// Repository persists enquiries.
type Repository interface {
	Create(ctx context.Context, e *Enquiry) error
}

// ValidationError describes one invalid form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrors collects every invalid field of a form.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return "invalid enquiry: " + strings.Join(parts, "; ")
}

// Field returns the reason for field, or "".
func (e ValidationErrors) Field(field string) string {
	for _, v := range e {
		if v.Field == field {
			return v.Reason
		}
	}
	return ""
}

// Validate checks a normalized form. It returns nil or ValidationErrors.
func Validate(f Form) error {
	var errs ValidationErrors
	add := func(field, reason string) {
		errs = append(errs, &ValidationError{Field: field, Reason: reason})
	}

	switch {
	case f.Name == "":
		add("name", "name is required")
	case utf8.RuneCountInString(f.Name) > MaxNameLen:
		add("name", fmt.Sprintf("name must be at most %d characters", MaxNameLen))
	}

	if f.Email == "" && f.Phone == "" {
		add("email", "email or phone is required")
	}
	if f.Email != "" && !validEmail(f.Email) {
		add("email", "email address is invalid")
	}
	if f.Phone != "" && !validPhone(f.Phone) {
		add("phone", "phone number is invalid")
	}

	switch {
	case f.Message == "":
		add("message", "message is required")
	case utf8.RuneCountInString(f.Message) > MaxMessageLen:
		add("message", fmt.Sprintf("message must be at most %d characters", MaxMessageLen))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validEmail(s string) bool {
	if len(s) > MaxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// validPhone accepts 7 to 15 digits with optional spaces, dashes,
// parentheses and a leading plus.
func validPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r) && r < utf8.RuneSelf:
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
