package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/auth"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
)

// UserStore defines the user lookups consumed by AuthService.
type UserStore interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuthConfig holds OAuth configuration.
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	PublicURL          string
}

// AuthService handles authentication logic.
type AuthService struct {
	users   UserStore
	tokens  *auth.Tokens
	google  *oauth2.Config
	github  *oauth2.Config
	client  *http.Client
	compare func(hash, password []byte) error
}

// dummyPasswordHash is compared against when a login matches no account, so
// unknown and known logins cost the same bcrypt work.
var dummyPasswordHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("no account matches this login"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.Tokens, cfg AuthConfig) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
			RedirectURL:  cfg.PublicURL + "/api/v1/auth/google/callback",
		},
		github: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
			RedirectURL:  cfg.PublicURL + "/api/v1/auth/github/callback",
		},
		client:  http.DefaultClient,
		compare: bcrypt.CompareHashAndPassword,
	}
}

// Session is the result of a successful sign-in.
type Session struct {
	Token auth.Token   `json:"token"`
	User  *domain.User `json:"user"`
}

// Login checks a username or email and password pair.
func (s *AuthService) Login(ctx context.Context, cmd command.Login) (*Session, error) {
	user, err := s.users.FindByLogin(ctx, cmd.Login)
	if err != nil {
		if apierr.IsKind(err, apierr.KindResourceNotFound) {
			_ = s.compare(dummyPasswordHash(), []byte(cmd.Password))
			return nil, apierr.InvalidCredentials()
		}
		return nil, err
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(cmd.Password)); err != nil {
		return nil, apierr.InvalidCredentials()
	}
	if !user.Activated {
		return nil, apierr.Unauthorized()
	}
	return s.session(user)
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// GoogleAuthURL returns the Google OAuth authorization URL.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GitHubAuthURL returns the GitHub OAuth authorization URL.
func (s *AuthService) GitHubAuthURL(state string) string {
	return s.github.AuthCodeURL(state)
}

// GoogleCallback exchanges the authorization code and signs in the account owning that email.
func (s *AuthService) GoogleCallback(ctx context.Context, code string) (*Session, error) {
	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, apierr.InvalidCredentials()
	}
	info, err := s.fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	return s.signInByEmail(ctx, domain.AuthProviderGoogle, info.Email)
}

// GitHubCallback exchanges the authorization code and signs in the account owning that email.
func (s *AuthService) GitHubCallback(ctx context.Context, code string) (*Session, error) {
	token, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, apierr.InvalidCredentials()
	}
	info, err := s.fetchGitHubUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	return s.signInByEmail(ctx, domain.AuthProviderGitHub, info.Email)
}

func (s *AuthService) signInByEmail(ctx context.Context, provider domain.AuthProvider, email string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apierr.IsKind(err, apierr.KindResourceNotFound) {
			return nil, apierr.InvalidCredentials()
		}
		return nil, goerr.Wrap(err, "find oauth user", goerr.V("provider", provider))
	}
	if !user.Activated {
		return nil, apierr.Unauthorized()
	}
	return s.session(user)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *AuthService) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	var info googleUserInfo
	if err := s.getJSON(ctx, "https://www.googleapis.com/oauth2/v2/userinfo", accessToken, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type githubUserInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

func (s *AuthService) fetchGitHubUserInfo(ctx context.Context, accessToken string) (*githubUserInfo, error) {
	var info githubUserInfo
	if err := s.getJSON(ctx, "https://api.github.com/user", accessToken, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		email, err := s.fetchGitHubPrimaryEmail(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		info.Email = email
	}
	return &info, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (s *AuthService) fetchGitHubPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []githubEmail
	if err := s.getJSON(ctx, "https://api.github.com/user/emails", accessToken, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", apierr.InvalidCredentials()
}

func (s *AuthService) getJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(err, "create request", goerr.V("url", url))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return goerr.Wrap(err, "fetch user info", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return goerr.New("user info request failed", goerr.V("url", url), goerr.V("status", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "decode user info", goerr.V("url", url))
	}
	return nil
}
