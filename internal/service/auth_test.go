package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/auth"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/service"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthService(t *testing.T, users ...*domain.User) (*service.AuthService, *auth.Tokens) {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", 1)
	require.NoError(t, err)
	return service.NewAuthService(newFakeUsers(users...), tokens, service.AuthConfig{
		GoogleClientID: "google-id",
		GitHubClientID: "github-id",
		PublicURL:      "http://localhost:8080",
	}), tokens
}

func TestAuthService_Login(t *testing.T) {
	active := &domain.User{
		ID: uuid.New(), Username: "jane", Email: "jane@example.com",
		PasswordHash: hashed(t, "correct horse"), Activated: true,
	}
	inactive := &domain.User{
		ID: uuid.New(), Username: "joe", Email: "joe@example.com",
		PasswordHash: hashed(t, "correct horse"),
	}
	svc, tokens := newAuthService(t, active, inactive)
	ctx := context.Background()

	t.Run("username", func(t *testing.T) {
		s, err := svc.Login(ctx, command.Login{Login: "jane", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, active.ID, s.User.ID)

		claims, err := tokens.Verify(string(s.Token))
		require.NoError(t, err)
		assert.Equal(t, active.ID.String(), claims.Subject)
	})

	t.Run("email", func(t *testing.T) {
		_, err := svc.Login(ctx, command.Login{Login: "jane@example.com", Password: "correct horse"})
		require.NoError(t, err)
	})

	tests := []struct {
		name string
		cmd  command.Login
		kind apierr.Kind
	}{
		{"unknown user", command.Login{Login: "nobody", Password: "correct horse"}, apierr.KindInvalidCredentials},
		{"wrong password", command.Login{Login: "jane", Password: "wrong"}, apierr.KindInvalidCredentials},
		{"inactive", command.Login{Login: "joe", Password: "correct horse"}, apierr.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.cmd)
			assert.True(t, apierr.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestAuthService_AuthURLs(t *testing.T) {
	svc, _ := newAuthService(t)

	google := svc.GoogleAuthURL("s1")
	assert.Contains(t, google, "client_id=google-id")
	assert.Contains(t, google, "state=s1")

	github := svc.GitHubAuthURL("s2")
	assert.Contains(t, github, "client_id=github-id")
	assert.Contains(t, github, "state=s2")
}

func TestAuthService_LoginUnknownUserStillComparesHash(t *testing.T) {
	svc, _ := newAuthService(t)

	var hashes [][]byte
	service.SetPasswordCompare(svc, func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	})

	_, err := svc.Login(context.Background(), command.Login{Login: "nobody", Password: "correct horse"})

	assert.True(t, apierr.IsKind(err, apierr.KindInvalidCredentials), "got %v", err)
	require.Len(t, hashes, 1)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
