package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: passwordHash,
		Role:         strings.TrimSpace(req.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Trimmed strips surrounding whitespace from the single-line fields.
func (req UpdateProfileRequest) Trimmed() UpdateProfileRequest {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		return &s
	}

	return UpdateProfileRequest{
		Name:      trim(req.Name),
		Bio:       req.Bio,
		City:      trim(req.City),
		Role:      trim(req.Role),
		AvatarURL: trim(req.AvatarURL),
	}
}

// Apply copies the provided fields of req onto u.
func (u User) Apply(req UpdateProfileRequest) User {
	req = req.Trimmed()

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.City != nil {
		u.City = *req.City
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	u.UpdatedAt = time.Now().UTC()

	return u
}
