package models

import "time"

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a registered user. Accounts are created once, after OTP
// verification, and never updated.
type Account struct {
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"password" bson:"password_hash"` // bcrypt
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	Role         string    `json:"role,omitempty" bson:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// IsAdmin returns true if the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Identity is the authenticated caller, resolved from the session by the auth
// middleware and carried by value through the request.
type Identity struct {
	Username string
	Role     string
}

// IsAdmin returns true if the caller has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// PendingRegistration is a registration awaiting OTP confirmation. It lives in
// the session only; at most one exists per session.
type PendingRegistration struct {
	Username     string
	Email        string
	PasswordHash string
	OTP          string
	Role         string
}

// Account converts the pending registration into the account to persist.
func (p PendingRegistration) Account(now time.Time) *Account {
	role := p.Role
	if role == "" {
		role = RoleUser
	}
	return &Account{
		Username:     p.Username,
		PasswordHash: p.PasswordHash,
		Email:        p.Email,
		Role:         role,
		CreatedAt:    now,
	}
}
