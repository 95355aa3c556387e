package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/store"
	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/idx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

var (
	ErrUserNotFound = errors.New("user_not_found")
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidRole  = errors.New("invalid_role")
)

// NewUser is the input to UserService.Create.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type UserService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher
}

// Get fetches a user by id. The password hash is never populated.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Create hashes the password and inserts the user. Role defaults to user.
func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	return createUser(ctx, s.Store.Users(), s.Hasher, in)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	withHash, err := s.Store.Users().GetUserByEmailWithPassword(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !s.Hasher.Matches(current, withHash.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return mapUserErr(err)
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

// ChangeRole sets the role of a user. The change reaches tokens on the
// user's next refresh.
func (s *UserService) ChangeRole(ctx context.Context, userID string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}
	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		return domain.User{}, mapUserErr(err)
	}

	slogx.FromContext(ctx).Info("role changed", "user_id", userID, "role", role)
	return s.Get(ctx, userID)
}

func createUser(ctx context.Context, users store.Users, hasher cryptox.PasswordHasher, in NewUser) (domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !in.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        NormalizeEmail(in.Email),
		Name:         in.Name,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := users.CreateUser(ctx, u); err != nil {
		return domain.User{}, mapUserErr(err)
	}

	return users.GetUserByID(ctx, u.ID)
}

func mapUserErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrEmailTaken
	}
	return err
}
