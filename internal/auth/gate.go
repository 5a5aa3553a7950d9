package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
)

// IdentityLookup resolves an active (not deleted) user by id.
type IdentityLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Gate authenticates requests carrying a bearer token.
type Gate struct {
	tokens *Tokens
	users  IdentityLookup
}

// NewGate creates a Gate.
func NewGate(tokens *Tokens, users IdentityLookup) *Gate {
	return &Gate{tokens: tokens, users: users}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate resolves the user behind an Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	raw, ok := BearerToken(header)
	if !ok {
		return nil, apierr.NotLoggedIn()
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		slog.DebugContext(ctx, "token rejected", "error", err)
		return nil, apierr.InvalidJwtToken()
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Internal(goerr.Wrap(err, "token subject is not a uuid", goerr.V("subject", claims.Subject)))
	}

	user, err := g.users.FindByID(ctx, id)
	if err != nil || user == nil {
		slog.DebugContext(ctx, "token identity lookup failed", "user_id", id, "error", err)
		return nil, apierr.InvalidJwtToken()
	}
	return user, nil
}
