package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
)

// FollowerStore persists follow relations.
type FollowerStore interface {
	Insert(ctx context.Context, followerID, followedID uuid.UUID, cmd command.InsertFollower) (*domain.Follower, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Follower, error)
	Update(ctx context.Context, id uuid.UUID, cmd command.UpdateFollower) (*domain.Follower, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBetween(ctx context.Context, a, b uuid.UUID) error
}

// BlockStore persists blocks.
type BlockStore interface {
	Insert(ctx context.Context, blockerID, blockedID uuid.UUID) (*domain.BlockedUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BlockedUser, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Blocked(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// PrivacyStore persists privacy preferences.
type PrivacyStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.PrivacyPreferences, error)
	Update(ctx context.Context, userID uuid.UUID, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error)
}

// UserFinder looks up active users.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// SocialService manages follows, blocks and privacy preferences.
type SocialService struct {
	users     UserFinder
	followers FollowerStore
	blocks    BlockStore
	privacy   PrivacyStore
}

func NewSocialService(users UserFinder, followers FollowerStore, blocks BlockStore, privacy PrivacyStore) *SocialService {
	return &SocialService{users: users, followers: followers, blocks: blocks, privacy: privacy}
}

// Follow makes actor follow the user followedID. Blocks in either direction forbid it.
func (s *SocialService) Follow(ctx context.Context, actor *domain.User, followedID uuid.UUID, cmd command.InsertFollower) (*domain.Follower, error) {
	if actor.ID == followedID {
		return nil, apierr.Unauthorized()
	}
	if _, err := s.users.FindByID(ctx, followedID); err != nil {
		return nil, err
	}
	blocked, err := s.blocks.Blocked(ctx, actor.ID, followedID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apierr.Unauthorized()
	}
	return s.followers.Insert(ctx, actor.ID, followedID, cmd)
}

func (s *SocialService) ownFollow(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	f, err := s.followers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if f.FollowerID != actor.ID {
		return apierr.Unauthorized()
	}
	return nil
}

// UpdateFollow changes the watch switches of one of actor's follows.
func (s *SocialService) UpdateFollow(ctx context.Context, actor *domain.User, id uuid.UUID, cmd command.UpdateFollower) (*domain.Follower, error) {
	if err := s.ownFollow(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.followers.Update(ctx, id, cmd)
}

func (s *SocialService) Unfollow(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if err := s.ownFollow(ctx, actor, id); err != nil {
		return err
	}
	return s.followers.Delete(ctx, id)
}

// Block blocks blockedID and drops follows between the two users.
func (s *SocialService) Block(ctx context.Context, actor *domain.User, blockedID uuid.UUID) (*domain.BlockedUser, error) {
	if actor.ID == blockedID {
		return nil, apierr.Unauthorized()
	}
	if _, err := s.users.FindByID(ctx, blockedID); err != nil {
		return nil, err
	}
	b, err := s.blocks.Insert(ctx, actor.ID, blockedID)
	if err != nil {
		return nil, err
	}
	if err := s.followers.DeleteBetween(ctx, actor.ID, blockedID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *SocialService) Unblock(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	b, err := s.blocks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b.BlockerID != actor.ID {
		return apierr.Unauthorized()
	}
	return s.blocks.Delete(ctx, id)
}

func (s *SocialService) PrivacyPreferences(ctx context.Context, actor *domain.User) (*domain.PrivacyPreferences, error) {
	return s.privacy.Get(ctx, actor.ID)
}

func (s *SocialService) UpdatePrivacyPreferences(ctx context.Context, actor *domain.User, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error) {
	return s.privacy.Update(ctx, actor.ID, cmd)
}
