package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

var (
	// ErrUnauthorized means no usable identity: the token is missing, or its
	// account is unknown, deleted, inactive or has a newer token version.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken means the token is malformed, badly signed or expired.
	ErrInvalidToken = errors.New("invalid token")
)

// Actor is a verified caller identity.
type Actor struct {
	AccountID string
	Name      string
	Role      string
	OfficeID  *string
}

// HasRole reports whether the actor's role meets the minimum role.
func (a *Actor) HasRole(minimum string) bool {
	return a != nil && model.RoleAtLeast(a.Role, minimum)
}

// Gate resolves tokens to actors.
type Gate struct {
	DB     *sql.DB
	Secret string
}

// Authenticate checks a raw token taken from the Authorization header. A
// "Bearer " prefix is accepted and stripped. It never writes to the database.
func (g *Gate) Authenticate(ctx context.Context, rawToken string) (*Actor, error) {
	token := strings.TrimSpace(rawToken)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	claims, err := ValidateToken(g.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	account, err := store.GetAccount(ctx, g.DB, claims.AccountID)
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if account == nil || account.DeletedAt != nil || !account.Active {
		return nil, fmt.Errorf("%w: account not available", ErrUnauthorized)
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
	}

	return &Actor{
		AccountID: account.ID,
		Name:      account.Name,
		Role:      account.Role,
		OfficeID:  account.OfficeID,
	}, nil
}
