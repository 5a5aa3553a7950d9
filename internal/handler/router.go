package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/hess/internal/domain"
)

// Deps are the services the router exposes.
type Deps struct {
	Gate        Authenticator
	Auth        AuthService
	Users       UserService
	Social      SocialService
	FrontendURL string
}

// NewRouter builds the echo instance serving /health and /api/v1.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	if d.FrontendURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{d.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
			ExposeHeaders:    []string{echo.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := NewAuthHandler(d.Auth)
	userHandler := NewUserHandler(d.Users)
	socialHandler := NewSocialHandler(d.Social)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/google", authHandler.GoogleRedirect)
	api.GET("/auth/google/callback", authHandler.GoogleCallback)
	api.GET("/auth/github", authHandler.GitHubRedirect)
	api.GET("/auth/github/callback", authHandler.GitHubCallback)
	api.POST("/user-confirmations/:id", userHandler.Confirm)
	api.POST("/password-resets", userHandler.RequestPasswordReset)
	api.POST("/password-resets/:id", userHandler.ResetPassword)

	// Protected routes. Middleware is attached per route so unknown paths stay ROUTE_NOT_FOUND.
	authed := Authenticate(d.Gate)
	managers := RequireRole(domain.UserRoleManager, domain.UserRoleRoot)

	api.GET("/auth/me", authHandler.Me, authed)

	api.POST("/users", userHandler.Create, authed, managers)
	api.GET("/users", userHandler.List, authed)
	api.GET("/users/:id", userHandler.Get, authed)
	api.PATCH("/users/:id", userHandler.Update, authed)
	api.DELETE("/users/:id", userHandler.Delete, authed)

	api.POST("/users/:id/followers", socialHandler.Follow, authed)
	api.PATCH("/followers/:id", socialHandler.UpdateFollow, authed)
	api.DELETE("/followers/:id", socialHandler.Unfollow, authed)
	api.POST("/users/:id/blocks", socialHandler.Block, authed)
	api.DELETE("/blocks/:id", socialHandler.Unblock, authed)

	api.GET("/me/privacy-preferences", socialHandler.PrivacyPreferences, authed)
	api.PATCH("/me/privacy-preferences", socialHandler.UpdatePrivacyPreferences, authed)
	api.PUT("/me/profile-image", userHandler.SetProfileImage, authed)

	return e
}
