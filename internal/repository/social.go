package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/patch"
)

const followerColumns = `id, follower_id, followed_id, watch_new_hesses, watch_replies, watch_follows, watch_likes, created_at, updated_at`

// FollowerRepository stores follow relations.
type FollowerRepository struct {
	db *sqlx.DB
}

func NewFollowerRepository(db *sqlx.DB) *FollowerRepository {
	return &FollowerRepository{db: db}
}

// Insert creates a follow. Unset switches default to watching new hesses only.
func (r *FollowerRepository) Insert(ctx context.Context, followerID, followedID uuid.UUID, cmd command.InsertFollower) (*domain.Follower, error) {
	var f domain.Follower
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO followers (follower_id, followed_id, watch_new_hesses, watch_replies, watch_follows, watch_likes)
		 VALUES ($1, $2, COALESCE($3, TRUE), COALESCE($4, FALSE), COALESCE($5, FALSE), COALESCE($6, FALSE))
		 RETURNING `+followerColumns,
		followerID, followedID, cmd.WatchNewHesses, cmd.WatchReplies, cmd.WatchFollows, cmd.WatchLikes,
	).StructScan(&f)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.AlreadyExists(apierr.ResourceFollowers)
		}
		return nil, goerr.Wrap(err, "insert follower", goerr.V("follower_id", followerID), goerr.V("followed_id", followedID))
	}
	return &f, nil
}

// FindByID retrieves an active follow.
func (r *FollowerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Follower, error) {
	var f domain.Follower
	err := r.db.GetContext(ctx, &f,
		`SELECT `+followerColumns+` FROM followers WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceFollowers)
		}
		return nil, goerr.Wrap(err, "find follower", goerr.V("follower_id", id))
	}
	return &f, nil
}

func followerAssignments(s command.FollowerSettings) *assignments {
	a := &assignments{}
	setPtr(a, "watch_new_hesses", s.WatchNewHesses)
	setPtr(a, "watch_replies", s.WatchReplies)
	setPtr(a, "watch_follows", s.WatchFollows)
	setPtr(a, "watch_likes", s.WatchLikes)
	return a
}

// Update changes the provided switches of a follow.
func (r *FollowerRepository) Update(ctx context.Context, id uuid.UUID, cmd command.UpdateFollower) (*domain.Follower, error) {
	a := followerAssignments(cmd.FollowerSettings)
	if a.empty() {
		return r.FindByID(ctx, id)
	}

	q, args := a.update("followers", "id = ? AND deleted_at IS NULL", followerColumns, id)
	var f domain.Follower
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&f); err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceFollowers)
		}
		return nil, goerr.Wrap(err, "update follower", goerr.V("follower_id", id))
	}
	return &f, nil
}

// Delete soft-deletes a follow.
func (r *FollowerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, r.db, "followers", id, apierr.ResourceFollowers)
}

// DeleteBetween removes follows in either direction between two users.
func (r *FollowerRepository) DeleteBetween(ctx context.Context, a, b uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE followers SET deleted_at = NOW()
		 WHERE deleted_at IS NULL
		   AND ((follower_id = $1 AND followed_id = $2) OR (follower_id = $2 AND followed_id = $1))`, a, b)
	if err != nil {
		return goerr.Wrap(err, "delete follows between users", goerr.V("a", a), goerr.V("b", b))
	}
	return nil
}

func softDelete(ctx context.Context, db *sqlx.DB, table string, id uuid.UUID, resource apierr.Resource) error {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return goerr.Wrap(err, "soft delete", goerr.V("table", table), goerr.V("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "soft delete", goerr.V("table", table), goerr.V("id", id))
	}
	if n == 0 {
		return apierr.ResourceNotFound(resource)
	}
	return nil
}

const blockColumns = `id, blocker_id, blocked_id, created_at`

// BlockRepository stores blocked users.
type BlockRepository struct {
	db *sqlx.DB
}

func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

func (r *BlockRepository) Insert(ctx context.Context, blockerID, blockedID uuid.UUID) (*domain.BlockedUser, error) {
	var b domain.BlockedUser
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO blocked_users (blocker_id, blocked_id) VALUES ($1, $2) RETURNING `+blockColumns,
		blockerID, blockedID,
	).StructScan(&b)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apierr.AlreadyExists(apierr.ResourceBlockedUsers)
		}
		return nil, goerr.Wrap(err, "insert blocked user", goerr.V("blocker_id", blockerID), goerr.V("blocked_id", blockedID))
	}
	return &b, nil
}

func (r *BlockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BlockedUser, error) {
	var b domain.BlockedUser
	err := r.db.GetContext(ctx, &b,
		`SELECT `+blockColumns+` FROM blocked_users WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceBlockedUsers)
		}
		return nil, goerr.Wrap(err, "find blocked user", goerr.V("id", id))
	}
	return &b, nil
}

func (r *BlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, r.db, "blocked_users", id, apierr.ResourceBlockedUsers)
}

// Blocked reports whether either user blocked the other.
func (r *BlockRepository) Blocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var blocked bool
	err := r.db.GetContext(ctx, &blocked,
		`SELECT EXISTS (
			SELECT 1 FROM blocked_users
			WHERE deleted_at IS NULL
			  AND ((blocker_id = $1 AND blocked_id = $2) OR (blocker_id = $2 AND blocked_id = $1))
		)`, a, b)
	if err != nil {
		return false, goerr.Wrap(err, "check block", goerr.V("a", a), goerr.V("b", b))
	}
	return blocked, nil
}

const privacyColumns = `user_id, is_private_profile, who_can_reply, who_can_like, who_can_mention_me,
	who_can_watch_new_hesses, who_can_watch_replies, who_can_watch_follows, who_can_watch_likes, updated_at`

// PrivacyRepository stores one privacy preferences row per user.
type PrivacyRepository struct {
	db *sqlx.DB
}

func NewPrivacyRepository(db *sqlx.DB) *PrivacyRepository {
	return &PrivacyRepository{db: db}
}

func (r *PrivacyRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.PrivacyPreferences, error) {
	var p domain.PrivacyPreferences
	err := r.db.GetContext(ctx, &p,
		`SELECT `+privacyColumns+` FROM user_privacy_preferences WHERE user_id = $1 AND deleted_at IS NULL`, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceUserPrivacyPreferences)
		}
		return nil, goerr.Wrap(err, "get privacy preferences", goerr.V("user_id", userID))
	}
	return &p, nil
}

func whoCanList(v []domain.WhoCan) domain.WhoCanList { return domain.WhoCanList(v) }

func privacyAssignments(cmd command.UpdatePrivacyPreferences) *assignments {
	a := &assignments{}
	setPtr(a, "is_private_profile", cmd.IsPrivateProfile)
	setField(a, "who_can_reply", patch.Map(cmd.WhoCanReply, whoCanList))
	setField(a, "who_can_like", patch.Map(cmd.WhoCanLike, whoCanList))
	setField(a, "who_can_mention_me", patch.Map(cmd.WhoCanMentionMe, whoCanList))
	setField(a, "who_can_watch_new_hesses", patch.Map(cmd.WhoCanWatchNewHesses, whoCanList))
	setField(a, "who_can_watch_replies", patch.Map(cmd.WhoCanWatchReplies, whoCanList))
	setField(a, "who_can_watch_follows", patch.Map(cmd.WhoCanWatchFollows, whoCanList))
	setField(a, "who_can_watch_likes", patch.Map(cmd.WhoCanWatchLikes, whoCanList))
	return a
}

func (r *PrivacyRepository) Update(ctx context.Context, userID uuid.UUID, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error) {
	a := privacyAssignments(cmd)
	if a.empty() {
		return r.Get(ctx, userID)
	}

	q, args := a.update("user_privacy_preferences", "user_id = ? AND deleted_at IS NULL", privacyColumns, userID)
	var p domain.PrivacyPreferences
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&p); err != nil {
		if isNoRows(err) {
			return nil, apierr.ResourceNotFound(apierr.ResourceUserPrivacyPreferences)
		}
		return nil, goerr.Wrap(err, "update privacy preferences", goerr.V("user_id", userID))
	}
	return &p, nil
}
