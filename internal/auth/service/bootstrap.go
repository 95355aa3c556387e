package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/store"
	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

var ErrBootstrapFailedToCreateAdmin = errors.New("failed to create admin user")

// BootstrapService seeds the first admin account into an empty store.
type BootstrapService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher

	AdminName     string
	AdminEmail    string
	AdminPassword string // generated when empty
}

// SeedResult describes what SeedAdmin did.
type SeedResult struct {
	Created bool
	User    domain.User

	// GeneratedPassword is set only when AdminPassword was empty.
	GeneratedPassword string
}

// SeedAdmin creates the admin user when there are no users yet. On a store
// that already has users it does nothing.
func (s *BootstrapService) SeedAdmin(ctx context.Context) (SeedResult, error) {
	l := slogx.FromContext(ctx)

	password := s.AdminPassword
	generated := ""
	if password == "" {
		p, err := cryptox.GeneratePassword()
		if err != nil {
			return SeedResult{}, err
		}
		password, generated = p, p
	}

	var res SeedResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}

		u, err := createUser(ctx, tx.Users(), s.Hasher, NewUser{
			Name:     s.AdminName,
			Email:    s.AdminEmail,
			Password: password,
			Role:     domain.RoleAdmin,
		})
		if err != nil {
			l.Error("failed to create admin user", slog.Any("error", err))
			return ErrBootstrapFailedToCreateAdmin
		}

		res = SeedResult{Created: true, User: u, GeneratedPassword: generated}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	if res.Created {
		l.Info("admin user seeded", "user_id", res.User.ID, "email", res.User.Email)
	}
	return res, nil
}
