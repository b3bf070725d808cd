package db

import (
	"context"
	"errors"

	"github.com/getlocalbuddy/backend/internal/config"
	"github.com/getlocalbuddy/backend/internal/domain/user"
	"github.com/getlocalbuddy/backend/internal/security"
)

// UserStore is the part of the users repository the seed needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the configured bootstrap account once.
// It returns created=false when seeding is disabled or the account exists.
func EnsureAdminUser(ctx context.Context, users UserStore, cfg config.Config) (created bool, err error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err = users.GetByEmail(ctx, user.NormalizeEmail(cfg.AdminEmail))

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return false, err
	}

	u := user.NewFromRegisterRequest(user.RegisterRequest{Email: cfg.AdminEmail, Role: cfg.AdminRole}, hash)
	u.Name = cfg.AdminName

	_, err = users.Create(ctx, u)

	// another instance may have seeded concurrently
	if errors.Is(err, user.ErrEmailTaken) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
