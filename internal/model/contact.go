package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// ContactCollection is the document-store collection holding contact messages.
const ContactCollection = "contactmessage"

// DefaultContactSource is used when a submission does not name its source.
const DefaultContactSource = "portfolio"

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email" bson:"email"`
	Subject    *string   `json:"subject" bson:"subject"`
	Phone      *string   `json:"phone" bson:"phone"`
	Message    string    `json:"message" bson:"message"`
	Source     string    `json:"source" bson:"source"`
	ReceivedAt time.Time `json:"-" bson:"received_at"`
}

// NewContactMessage returns a message with defaults applied, ready to be
// decoded into.
func NewContactMessage() *ContactMessage {
	return &ContactMessage{Source: DefaultContactSource}
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate checks field lengths and the email address.
func (m *ContactMessage) Validate() error {
	var errs []FieldError
	check := func(field, value string, minLen, maxLen int) {
		n := utf8.RuneCountInString(value)
		switch {
		case n < minLen:
			errs = append(errs, FieldError{field, fmt.Sprintf("must be at least %d characters", minLen)})
		case n > maxLen:
			errs = append(errs, FieldError{field, fmt.Sprintf("must be at most %d characters", maxLen)})
		}
	}

	check("name", m.Name, 2, 120)
	if m.Subject != nil {
		check("subject", *m.Subject, 0, 200)
	}
	if m.Phone != nil {
		check("phone", *m.Phone, 0, 30)
	}
	check("message", m.Message, 5, 5000)

	if !validEmail(m.Email) {
		errs = append(errs, FieldError{"email", "must be a valid email address"})
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// validEmail accepts a bare address with a dotted domain; display names are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
