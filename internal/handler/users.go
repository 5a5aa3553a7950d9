package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/query"
	"github.com/sumire/hess/internal/repository"
	"github.com/sumire/hess/internal/upload"
)

// profileImageField is the multipart part carrying a profile image.
const profileImageField = "image"

// UserService is the account logic used by UserHandler.
type UserService interface {
	Create(ctx context.Context, actor *domain.User, cmd command.InsertUser) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, list query.List) ([]domain.User, error)
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, cmd command.UpdateUser) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
	Confirm(ctx context.Context, tokenID uuid.UUID) error
	RequestPasswordReset(ctx context.Context, cmd command.RequestPasswordReset) error
	ResetPassword(ctx context.Context, tokenID uuid.UUID, cmd command.ResetPassword) error
	SetProfileImage(ctx context.Context, actor *domain.User, img *upload.Image) (*domain.ProfileImage, error)
}

// UserHandler serves account endpoints.
type UserHandler struct {
	users UserService
}

func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Create(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewInsertUser)
	if err != nil {
		return err
	}
	user, err := h.users.Create(c.Request().Context(), actor, cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c echo.Context) error {
	list, err := listQuery(c, repository.UserSortColumns)
	if err != nil {
		return err
	}
	users, err := h.users.List(c.Request().Context(), list)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id", apierr.ResourceUsers)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id", apierr.ResourceUsers)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewUpdateUser)
	if err != nil {
		return err
	}
	user, err := h.users.Update(c.Request().Context(), actor, id, cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id", apierr.ResourceUsers)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm activates an account from a confirmation link.
func (h *UserHandler) Confirm(c echo.Context) error {
	id, err := idParam(c, "id", apierr.ResourceUserConfirmationToken)
	if err != nil {
		return err
	}
	if err := h.users.Confirm(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestPasswordReset always answers 202 so callers cannot probe for accounts.
func (h *UserHandler) RequestPasswordReset(c echo.Context) error {
	cmd, err := bind(c, command.NewRequestPasswordReset)
	if err != nil {
		return err
	}
	if err := h.users.RequestPasswordReset(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := idParam(c, "id", apierr.ResourcePasswordResetToken)
	if err != nil {
		return err
	}
	cmd, err := bind(c, command.NewResetPassword)
	if err != nil {
		return err
	}
	if err := h.users.ResetPassword(c.Request().Context(), id, cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetProfileImage stores the "image" part of a multipart body as the caller's avatar.
func (h *UserHandler) SetProfileImage(c echo.Context) error {
	actor, err := CurrentUser(c)
	if err != nil {
		return err
	}
	reader, err := c.Request().MultipartReader()
	if err != nil {
		return apierr.NoImage()
	}
	img, err := upload.ReadImage(reader, profileImageField)
	if err != nil {
		return err
	}
	image, err := h.users.SetProfileImage(c.Request().Context(), actor, img)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, image)
}
