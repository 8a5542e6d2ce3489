// Package validate builds per-field validation error maps for the 422
// response envelope.
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"unicode/utf8"
)

// Errors maps a field name to the list of rule violations for that field.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Required adds an error when value is empty.
func (e Errors) Required(field, value string) {
	if value == "" {
		e.Add(field, fmt.Sprintf("The %s field is required.", field))
	}
}

// MaxLen adds an error when value exceeds max characters, counted as runes so
// multibyte input is not rejected early. Empty values are left to Required.
func (e Errors) MaxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.Add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, max))
	}
}

// MinLen adds an error when a non-empty value is shorter than min characters.
func (e Errors) MinLen(field, value string, min int) {
	if value != "" && len(value) < min {
		e.Add(field, fmt.Sprintf("The %s must be at least %d characters.", field, min))
	}
}

// Email adds an error when a non-empty value is not a valid address.
func (e Errors) Email(field, value string) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		e.Add(field, fmt.Sprintf("The %s must be a valid email address.", field))
	}
}

// URL adds an error when a non-empty value is not an absolute http(s) URL.
func (e Errors) URL(field, value string) {
	if value == "" {
		return
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		e.Add(field, fmt.Sprintf("The %s format is invalid.", field))
	}
}
