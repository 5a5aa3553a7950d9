package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthService is the sign-in logic used by AuthHandler.
type AuthService interface {
	Login(ctx context.Context, cmd command.Login) (*service.Session, error)
	GoogleAuthURL(state string) string
	GitHubAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*service.Session, error)
	GitHubCallback(ctx context.Context, code string) (*service.Session, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges a username or email and password for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	cmd, err := bind(c, command.NewLogin)
	if err != nil {
		return err
	}
	session, err := h.auth.Login(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// GoogleRedirect redirects the user to Google's OAuth consent page.
func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	return redirectWithState(c, h.auth.GoogleAuthURL)
}

// GoogleCallback handles the OAuth callback from Google.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	return h.callback(c, h.auth.GoogleCallback)
}

// GitHubRedirect redirects the user to GitHub's OAuth consent page.
func (h *AuthHandler) GitHubRedirect(c echo.Context) error {
	return redirectWithState(c, h.auth.GitHubAuthURL)
}

// GitHubCallback handles the OAuth callback from GitHub.
func (h *AuthHandler) GitHubCallback(c echo.Context) error {
	return h.callback(c, h.auth.GitHubCallback)
}

func (h *AuthHandler) callback(c echo.Context, exchange func(context.Context, string) (*service.Session, error)) error {
	if !validOAuthState(c) {
		return apierr.InvalidCredentials()
	}
	code := c.QueryParam("code")
	if code == "" {
		return apierr.InvalidCredentials()
	}
	session, err := exchange(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func redirectWithState(c echo.Context, authURL func(string) string) error {
	state := generateState()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusTemporaryRedirect, authURL(state))
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validOAuthState(c echo.Context) bool {
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil {
		return false
	}
	state := c.QueryParam("state")
	return state != "" && state == cookie.Value
}
