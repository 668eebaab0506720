package ux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"ada@example.com", true},
		{"a.b+c@sub.example.org", true},
		{"", false},
		{"ada", false},
		{"ada@example", false},
		{"@example.com", false},
		{"ada@.com", false},
		{"ada lovelace@example.com", false},
		{"ada@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd", true},
		{"Sup3rSecretPass", true},
		{"Pass0rd", false},
		{"password1", false},
		{"PASSWORD1", false},
		{"Password", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPassword(tt.password))
		})
	}
}

func TestIsValidPasswordProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.StringMatching(`[a-z]{6,20}`).Draw(t, "body")
		password := "A" + body + "7"
		if !IsValidPassword(password) {
			t.Fatalf("expected %q to be valid", password)
		}
		if IsValidPassword(body) {
			t.Fatalf("expected %q without upper case or digit to be invalid", body)
		}
	})
}
