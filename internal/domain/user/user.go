package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	City         string    `json:"city"`
	AvatarURL    string    `json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the only user shape handed to clients.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	City      string    `json:"city"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=72"`
	Role     string `json:"role" binding:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// nil fields are left untouched by the update
type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=80"`
	Bio       *string `json:"bio" binding:"omitempty,max=1000"`
	City      *string `json:"city" binding:"omitempty,max=80"`
	Role      *string `json:"role" binding:"omitempty,max=32"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,max=2048"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayName falls back to the local part of the email when no name is set.
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}

	local, _, _ := strings.Cut(email, "@")

	return local
}

// AvatarFor returns the explicit avatar or one generated from the user id.
func AvatarFor(explicit, id, template string) string {
	if explicit != "" {
		return explicit
	}

	return strings.ReplaceAll(template, "{id}", id)
}

func (u User) Profile(avatarTemplate string) Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Name:      DisplayName(u.Name, u.Email),
		Bio:       u.Bio,
		City:      u.City,
		Avatar:    AvatarFor(u.AvatarURL, u.ID, avatarTemplate),
		CreatedAt: u.CreatedAt,
	}
}
