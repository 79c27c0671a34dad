package models

import "testing"

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		expected bool
	}{
		{"admin user", RoleAdmin, true},
		{"regular user", RoleUser, false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if got := user.IsAdmin(); got != tt.expected {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{"prefers name", User{Name: "Sarah", Username: "sarahk", Email: "s@example.com"}, "Sarah"},
		{"falls back to username", User{Username: "sarahk", Email: "s@example.com"}, "sarahk"},
		{"falls back to email", User{Email: "s@example.com"}, "s@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}
