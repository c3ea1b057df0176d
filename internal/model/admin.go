package model

import "time"

// Admin is a back-office account. Email is unique after lower-casing.
type Admin struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	PasswordHash *string    `json:"-"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminView is the identity returned to the dashboard after login or verify.
type AdminView struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	Role         Role         `json:"role"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// NewAdminView builds the dashboard identity for an admin account.
func NewAdminView(a *Admin) AdminView {
	v := AdminView{ID: a.ID, Email: a.Email, Name: a.Name, Role: a.Role, Capabilities: a.Role.Capabilities()}
	if a.AvatarURL != nil {
		v.AvatarURL = *a.AvatarURL
	}
	return v
}
