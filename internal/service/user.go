package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/mail"
	"github.com/sumire/hess/internal/query"
	"github.com/sumire/hess/internal/upload"
)

// UserRepository is the persistence used by UserService. Insert also creates the
// user's default privacy preferences.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, list query.List) ([]domain.User, error)
	Insert(ctx context.Context, cmd command.InsertUser, passwordHash string, verifiedBy *uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, cmd command.UpdateUser, passwordHash *string) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) (*domain.ProfileImage, error)
}

// TokenStore persists single-use tokens.
type TokenStore interface {
	Insert(ctx context.Context, userID uuid.UUID, expireAt time.Time) (*domain.Token, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Token, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ImageStore keeps uploaded files and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// UserConfig holds the settings UserService needs.
type UserConfig struct {
	FrontendURL      string
	ActivationTTL    time.Duration
	PasswordResetTTL time.Duration
	BcryptCost       int
}

// UserService manages accounts and their confirmation and reset flows.
type UserService struct {
	users         UserRepository
	confirmations TokenStore
	resets        TokenStore
	images        ImageStore
	mailer        mail.Sender
	cfg           UserConfig
	logger        *slog.Logger
	now           func() time.Time
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithNow overrides the clock.
func WithNow(now func() time.Time) UserServiceOption {
	return func(s *UserService) { s.now = now }
}

// WithImageStore enables profile image uploads.
func WithImageStore(images ImageStore) UserServiceOption {
	return func(s *UserService) { s.images = images }
}

// NewUserService creates a new UserService.
func NewUserService(
	users UserRepository,
	confirmations, resets TokenStore,
	mailer mail.Sender,
	cfg UserConfig,
	opts ...UserServiceOption,
) *UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	s := &UserService{
		users:         users,
		confirmations: confirmations,
		resets:        resets,
		mailer:        mailer,
		cfg:           cfg,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", goerr.Wrap(err, "hash password")
	}
	return string(h), nil
}

// grantsRole reports whether actor may hand out role. Only ROOT creates privileged accounts.
func grantsRole(actor *domain.User, role domain.UserRole) bool {
	return role == domain.UserRoleUser || actor.Role == domain.UserRoleRoot
}

// Create registers a user on behalf of a manager. Inactive accounts receive a confirmation email.
func (s *UserService) Create(ctx context.Context, actor *domain.User, cmd command.InsertUser) (*domain.User, error) {
	if !actor.Role.CanManageUsers() || !grantsRole(actor, cmd.Role) {
		return nil, apierr.Unauthorized()
	}

	hash, err := s.hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	var verifiedBy *uuid.UUID
	if cmd.Verified {
		verifiedBy = &actor.ID
	}

	user, err := s.users.Insert(ctx, cmd, hash, verifiedBy)
	if err != nil {
		return nil, err
	}

	if !user.Activated {
		token, err := s.confirmations.Insert(ctx, user.ID, s.now().Add(s.cfg.ActivationTTL))
		if err != nil {
			return nil, err
		}
		link := fmt.Sprintf("%s/confirm/%s", s.cfg.FrontendURL, token.ID)
		s.send(ctx, mail.AccountActivation(user.Email, user.Name, link))
	}
	return user, nil
}

func (s *UserService) send(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send email", "tag", msg.Tag, "error", err)
	}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, list query.List) ([]domain.User, error) {
	return s.users.List(ctx, list)
}

// Update changes a user. Users edit themselves; managers edit anyone. Account status fields
// are reserved for managers.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id uuid.UUID, cmd command.UpdateUser) (*domain.User, error) {
	if !actor.CanEdit(id) {
		return nil, apierr.Unauthorized()
	}
	if cmd.TouchesAccountStatus() && !actor.Role.CanManageUsers() {
		return nil, apierr.Unauthorized()
	}
	if cmd.Role != nil && !grantsRole(actor, *cmd.Role) {
		return nil, apierr.Unauthorized()
	}

	var hash *string
	if cmd.Password != nil {
		h, err := s.hash(*cmd.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}
	return s.users.Update(ctx, id, cmd, hash)
}

func (s *UserService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.CanEdit(id) {
		return apierr.Unauthorized()
	}
	return s.users.Delete(ctx, id)
}

// usable loads a token and checks it can still be consumed.
func usable(ctx context.Context, store TokenStore, id uuid.UUID, resource apierr.Resource, now time.Time, expired func() *apierr.Error) (*domain.Token, error) {
	token, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if token.Used {
		return nil, apierr.ResourceNotFound(resource)
	}
	if token.Expired(now) {
		return nil, expired()
	}
	return token, nil
}

// Confirm activates the account a confirmation token was issued for.
func (s *UserService) Confirm(ctx context.Context, tokenID uuid.UUID) error {
	token, err := usable(ctx, s.confirmations, tokenID,
		apierr.ResourceUserConfirmationToken, s.now(), apierr.UserConfirmationTokenExpired)
	if err != nil {
		return err
	}
	if err := s.users.Activate(ctx, token.UserID); err != nil {
		return err
	}
	return s.confirmations.MarkUsed(ctx, token.ID)
}

// RequestPasswordReset mails a reset link. Unknown addresses succeed silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, cmd command.RequestPasswordReset) error {
	user, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		if apierr.IsKind(err, apierr.KindResourceNotFound) {
			return nil
		}
		return err
	}

	token, err := s.resets.Insert(ctx, user.ID, s.now().Add(s.cfg.PasswordResetTTL))
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/password-reset/%s", s.cfg.FrontendURL, token.ID)
	s.send(ctx, mail.PasswordReset(user.Email, user.Name, link))
	return nil
}

// ResetPassword sets a new password using a reset token.
func (s *UserService) ResetPassword(ctx context.Context, tokenID uuid.UUID, cmd command.ResetPassword) error {
	token, err := usable(ctx, s.resets, tokenID,
		apierr.ResourcePasswordResetToken, s.now(), apierr.PasswordResetTokenExpired)
	if err != nil {
		return err
	}
	hash, err := s.hash(cmd.Password)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// SetProfileImage stores img and makes it the actor's profile image.
func (s *UserService) SetProfileImage(ctx context.Context, actor *domain.User, img *upload.Image) (*domain.ProfileImage, error) {
	if s.images == nil {
		return nil, goerr.New("image storage is not configured")
	}
	key := fmt.Sprintf("users/%s/%s%s", actor.ID, uuid.New(), img.Extension)
	url, err := s.images.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		return nil, err
	}
	return s.users.SetProfileImage(ctx, actor.ID, url)
}

// PurgeExpiredTokens deletes expired confirmation and reset tokens.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	var total int64
	for _, store := range []TokenStore{s.confirmations, s.resets} {
		n, err := store.DeleteExpired(ctx)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
