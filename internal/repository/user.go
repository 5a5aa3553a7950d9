package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/query"
)

const userColumns = `u.id, u.name, u.email, u.bio, u.username, u.password, u.telephone,
	u.verified, u.verified_by, u.activated, u.gender, u.role,
	u.created_at, u.updated_at, u.deleted_at,
	(SELECT i.image_url FROM user_profile_images i WHERE i.id = u.user_profile_image_id) AS profile_image_url`

// UserSortColumns maps sortable API fields to columns.
var UserSortColumns = map[string]string{
	"name":      "u.name",
	"username":  "u.username",
	"createdAt": "u.created_at",
	"updatedAt": "u.updated_at",
}

// UserRepository handles user data access operations. Deleted users are invisible to every read.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves an active user by id.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, "u.id = $1", id)
}

// FindByLogin retrieves an active user by username or email.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	return r.findOne(ctx, "(u.username = $1 OR u.email = $1)", login)
}

// FindByEmail retrieves an active user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "u.email = $1", email)
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users u WHERE `+where+` AND u.deleted_at IS NULL`, arg)
	if err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
		}
		return nil, goerr.Wrap(err, "find user", goerr.V("where", where))
	}
	return &user, nil
}

// List returns one page of active users.
func (r *UserRepository) List(ctx context.Context, list query.List) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.deleted_at IS NULL ORDER BY ` +
		orderBy(list.Order, "u.created_at DESC") + `, u.id LIMIT $1 OFFSET $2`

	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, q, list.Page.Size, list.Page.Offset()); err != nil {
		return nil, goerr.Wrap(err, "list users", goerr.V("page", list.Page.Number))
	}
	return users, nil
}

func orderBy(orders []query.Order, fallback string) string {
	if len(orders) == 0 {
		return fallback
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = fmt.Sprintf("%s %s", o.Column, o.Direction())
	}
	return strings.Join(parts, ", ")
}

// Insert creates a user together with its default privacy preferences.
// A taken username or email yields AlreadyExists.
func (r *UserRepository) Insert(ctx context.Context, cmd command.InsertUser, passwordHash string, verifiedBy *uuid.UUID) (*domain.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "begin insert user tx")
	}
	defer func() { _ = tx.Rollback() }()

	var user domain.User
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO users AS u (name, email, bio, username, password, telephone, verified, verified_by, activated, gender, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+userColumns,
		cmd.Name, cmd.Email, cmd.Bio, cmd.Username, passwordHash, cmd.Telephone,
		cmd.Verified, verifiedBy, cmd.Activated, cmd.Gender, cmd.Role,
	).StructScan(&user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.AlreadyExists(apierr.ResourceUsers)
		}
		return nil, goerr.Wrap(err, "insert user", goerr.V("username", cmd.Username))
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_privacy_preferences (user_id) VALUES ($1)`, user.ID); err != nil {
		return nil, goerr.Wrap(err, "create privacy preferences", goerr.V("user_id", user.ID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "commit insert user", goerr.V("user_id", user.ID))
	}
	return &user, nil
}

func userAssignments(cmd command.UpdateUser, passwordHash *string) *assignments {
	a := &assignments{}
	setPtr(a, "name", cmd.Name)
	setPtr(a, "email", cmd.Email)
	setField(a, "bio", cmd.Bio)
	setPtr(a, "username", cmd.Username)
	setPtr(a, "password", passwordHash)
	setField(a, "telephone", cmd.Telephone)
	setPtr(a, "verified", cmd.Verified)
	setPtr(a, "activated", cmd.Activated)
	setPtr(a, "gender", cmd.Gender)
	setPtr(a, "role", cmd.Role)
	return a
}

// Update applies the provided fields. The password must already be hashed.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, cmd command.UpdateUser, passwordHash *string) (*domain.User, error) {
	a := userAssignments(cmd, passwordHash)
	if a.empty() {
		return r.FindByID(ctx, id)
	}

	q, args := a.update("users AS u", "u.id = ? AND u.deleted_at IS NULL", userColumns, id)
	var user domain.User
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&user); err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
		}
		if isUniqueViolation(err) {
			return nil, apierr.AlreadyExists(apierr.ResourceUsers)
		}
		return nil, goerr.Wrap(err, "update user", goerr.V("user_id", id))
	}
	return &user, nil
}

// Delete soft-deletes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "delete user", id,
		`UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`)
}

// Activate marks a user as activated.
func (r *UserRepository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "activate user", id,
		`UPDATE users SET activated = TRUE, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`)
}

// SetPassword stores a new password hash.
func (r *UserRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.exec(ctx, "set password", id,
		`UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, passwordHash)
}

func (r *UserRepository) exec(ctx context.Context, op string, id uuid.UUID, q string, extra ...any) error {
	res, err := r.db.ExecContext(ctx, q, append([]any{id}, extra...)...)
	if err != nil {
		return goerr.Wrap(err, op, goerr.V("user_id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, op, goerr.V("user_id", id))
	}
	if n == 0 {
		return apierr.ResourceNotFound(apierr.ResourceUsers)
	}
	return nil
}

// SetProfileImage records an uploaded image and makes it the user's current one.
func (r *UserRepository) SetProfileImage(ctx context.Context, userID uuid.UUID, imageURL string) (*domain.ProfileImage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "begin profile image tx")
	}
	defer func() { _ = tx.Rollback() }()

	var image domain.ProfileImage
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO user_profile_images (user_id, image_url) VALUES ($1, $2)
		 RETURNING id, user_id, image_url, created_at`,
		userID, imageURL,
	).StructScan(&image)
	if err != nil {
		return nil, goerr.Wrap(err, "insert profile image", goerr.V("user_id", userID))
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET user_profile_image_id = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		image.ID, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "link profile image", goerr.V("user_id", userID))
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "commit profile image", goerr.V("user_id", userID))
	}
	return &image, nil
}
