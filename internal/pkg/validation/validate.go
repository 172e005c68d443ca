package validation

import (
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format accepted from clients.
const DateLayout = "2006-01-02"

// emptyRichText is the value the rich-text editor submits for an empty body.
const emptyRichText = "<p><br></p>"

// Validation rule patterns
var (
	// Permissive RFC-light email pattern: local@domain.tld
	EmailPattern = `^[\w.\-]+@[\w.\-]+\.\w+$`

	// Institutional net ID: exactly 9 alphanumeric characters
	NetIDPattern = `^[A-Za-z0-9]{9}$`

	// Password minimum length
	PasswordMinLength = 6
)

var compiled = struct {
	email *regexp.Regexp
	netID *regexp.Regexp
}{
	email: regexp.MustCompile(EmailPattern),
	netID: regexp.MustCompile(NetIDPattern),
}

// NotEmpty reports whether every field has at least one character.
func NotEmpty(fields ...string) bool {
	for _, f := range fields {
		if len(f) == 0 {
			return false
		}
	}
	return true
}

// Email reports whether s looks like local@domain.tld.
func Email(s string) bool {
	return compiled.email.MatchString(s)
}

// NetID reports whether s is exactly 9 alphanumeric characters.
func NetID(s string) bool {
	return compiled.netID.MatchString(s)
}

// Password reports whether s meets the minimum length requirement.
func Password(s string) bool {
	return len(s) >= PasswordMinLength
}

// Role reports whether s is a recognized account role.
func Role(s string) bool {
	return s == "student" || s == "faculty"
}

// Description rejects empty strings and the editor's empty rich-text sentinel.
func Description(s string) bool {
	return s != "" && s != emptyRichText
}

// Date reports whether s parses as a calendar date.
func Date(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// StartEndDates reports whether both dates parse and start is not after end.
func StartEndDates(start, end string) bool {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return false
	}
	return !s.After(e)
}

// NotPast reports whether s parses as a date on or after today.
func NotPast(s string) bool {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	today, _ := time.Parse(DateLayout, time.Now().Format(DateLayout))
	return !d.Before(today)
}

// MaxSignups reports whether s parses as a positive integer.
func MaxSignups(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors accumulates field-level failures so the caller can report
// all of them at once instead of stopping at the first.
type Errors struct {
	fields []FieldError
}

// Check records a failure message for field unless ok is true.
func (e *Errors) Check(ok bool, field, message string) {
	if !ok {
		e.fields = append(e.fields, FieldError{Field: field, Message: message})
	}
}

// Add records a failure unconditionally.
func (e *Errors) Add(field, message string) {
	e.fields = append(e.fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (e *Errors) HasErrors() bool {
	return len(e.fields) > 0
}

// Fields returns the accumulated failures in check order.
func (e *Errors) Fields() []FieldError {
	return e.fields
}
