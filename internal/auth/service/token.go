package service

import (
	"fmt"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
)

// TokenService issues token pairs for users.
type TokenService struct {
	Signer jwtx.Signer
}

// Issue signs a fresh access/refresh pair for u carrying its current role.
func (s *TokenService) Issue(u domain.User) (domain.TokenPair, error) {
	pair, err := s.Signer.Issue(u.ID, u.Role.String())
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	return domain.TokenPair{
		Access: domain.IssuedToken{
			Token:     pair.Access.Token,
			ExpiresAt: pair.Access.ExpiresAt,
		},
		Refresh: domain.IssuedToken{
			Token:     pair.Refresh.Token,
			ExpiresAt: pair.Refresh.ExpiresAt,
		},
	}, nil
}
