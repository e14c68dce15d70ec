package model

import "time"

// Roles stored in the users table and carried in the JWT "role" claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account as stored in the `users` table.  Only the
// bcrypt hash of the password is persisted.
//
// Fields:
//
//	ID           – opaque UUID.
//	Username     – display name.
//	Email        – unique login email.
//	PasswordHash – bcrypt hashed password.
//	Role         – "user" or "admin".
//	CreatedAt    – timestamp of registration.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the authenticated identity attached to a request by the JWT
// middleware.  Privileged actors may operate on bookings they do not own.
type Actor struct {
	ID   string
	Role string
}

// Privileged reports whether the actor holds the admin role.
func (a Actor) Privileged() bool { return a.Role == RoleAdmin }
