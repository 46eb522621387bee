package model

import (
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func validMessage() *ContactMessage {
	m := NewContactMessage()
	m.Name = "Ada Lovelace"
	m.Email = "ada@example.com"
	m.Message = "Hello there, nice portfolio."
	return m
}

func TestNewContactMessage_DefaultSource(t *testing.T) {
	m := NewContactMessage()
	if m.Source != DefaultContactSource {
		t.Errorf("Source = %q, want %q", m.Source, DefaultContactSource)
	}
}

func TestContactMessage_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(m *ContactMessage)
		wantField string
	}{
		{"valid", func(*ContactMessage) {}, ""},
		{"valid with optional fields", func(m *ContactMessage) {
			m.Subject = strPtr("Job offer")
			m.Phone = strPtr("+1 555 0100")
		}, ""},
		{"name too short", func(m *ContactMessage) { m.Name = "A" }, "name"},
		{"name too long", func(m *ContactMessage) { m.Name = strings.Repeat("a", 121) }, "name"},
		{"name counts runes", func(m *ContactMessage) { m.Name = "Żó" }, ""},
		{"message too short", func(m *ContactMessage) { m.Message = "hey" }, "message"},
		{"message too long", func(m *ContactMessage) { m.Message = strings.Repeat("x", 5001) }, "message"},
		{"subject too long", func(m *ContactMessage) { m.Subject = strPtr(strings.Repeat("s", 201)) }, "subject"},
		{"phone too long", func(m *ContactMessage) { m.Phone = strPtr(strings.Repeat("1", 31)) }, "phone"},
		{"email missing at", func(m *ContactMessage) { m.Email = "ada.example.com" }, "email"},
		{"email without dotted domain", func(m *ContactMessage) { m.Email = "ada@localhost" }, "email"},
		{"email with display name", func(m *ContactMessage) { m.Email = "Ada <ada@example.com>" }, "email"},
		{"email empty", func(m *ContactMessage) { m.Email = "" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage()
			tt.mutate(m)

			err := m.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() fields = %+v, want entry for %q", ve.Fields, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{"name", "must be at least 2 characters"},
		{"email", "must be a valid email address"},
	}}
	want := "name: must be at least 2 characters; email: must be a valid email address"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
