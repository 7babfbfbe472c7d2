package auth

import "time"

// Admin is an administrator account as seen by the login flow.
type Admin struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	RolesName    []string  `json:"roles_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginResult is returned after successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     *Admin    `json:"data"`
}
