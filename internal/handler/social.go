package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
)

// SocialService is the follow, block and privacy logic used by SocialHandler.
type SocialService interface {
	Follow(ctx context.Context, actor *domain.User, followedID uuid.UUID, cmd command.InsertFollower) (*domain.Follower, error)
	UpdateFollow(ctx context.Context, actor *domain.User, id uuid.UUID, cmd command.UpdateFollower) (*domain.Follower, error)
	Unfollow(ctx context.Context, actor *domain.User, id uuid.UUID) error
	Block(ctx context.Context, actor *domain.User, blockedID uuid.UUID) (*domain.BlockedUser, error)
	Unblock(ctx context.Context, actor *domain.User, id uuid.UUID) error
	PrivacyPreferences(ctx context.Context, actor *domain.User) (*domain.PrivacyPreferences, error)
	UpdatePrivacyPreferences(ctx context.Context, actor *domain.User, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error)
}

// SocialHandler serves follow, block and privacy endpoints.
type SocialHandler struct {
	social SocialService
}

func NewSocialHandler(social SocialService) *SocialHandler {
	return &SocialHandler{social: social}
}

// actorAndID returns the caller and the UUID path parameter "id".
func actorAndID(c echo.Context, resource apierr.Resource) (*domain.User, uuid.UUID, error) {
	actor, err := CurrentUser(c)
	if err != nil {
		return nil, uuid.Nil, err
	}
	id, err := idParam(c, "id", resource)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return actor, id, nil
}

// Follow makes the caller follow the user in the path.
func (h *SocialHandler) Follow(c echo.Context) error {
	actor, id, err := actorAndID(c, apierr.ResourceUsers)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewInsertFollower)
	if err != nil {
		return err
	}
	f, err := h.social.Follow(c.Request().Context(), actor, id, cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *SocialHandler) UpdateFollow(c echo.Context) error {
	actor, id, err := actorAndID(c, apierr.ResourceFollowers)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewUpdateFollower)
	if err != nil {
		return err
	}
	f, err := h.social.UpdateFollow(c.Request().Context(), actor, id, cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *SocialHandler) Unfollow(c echo.Context) error {
	actor, id, err := actorAndID(c, apierr.ResourceFollowers)
	if err != nil {
		return err
	}
	if err := h.social.Unfollow(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Block blocks the user in the path.
func (h *SocialHandler) Block(c echo.Context) error {
	actor, id, err := actorAndID(c, apierr.ResourceUsers)
	if err != nil {
		return err
	}
	b, err := h.social.Block(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *SocialHandler) Unblock(c echo.Context) error {
	actor, id, err := actorAndID(c, apierr.ResourceBlockedUsers)
	if err != nil {
		return err
	}
	if err := h.social.Unblock(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SocialHandler) PrivacyPreferences(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	p, err := h.social.PrivacyPreferences(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SocialHandler) UpdatePrivacyPreferences(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewUpdatePrivacyPreferences)
	if err != nil {
		return err
	}
	p, err := h.social.UpdatePrivacyPreferences(c.Request().Context(), actor, cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
