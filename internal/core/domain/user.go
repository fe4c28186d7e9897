package domain

import "time"

// User models an account that can authenticate against the API.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	ResetTokenHash      string    `json:"-"`
	ResetTokenExpiresAt time.Time `json:"-"`
}

// IsAdmin reports whether u is an administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Sanitized returns a copy of u without any credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	clone.ResetTokenHash = ""
	clone.ResetTokenExpiresAt = time.Time{}
	return &clone
}
