package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/mail"
	"github.com/sumire/hess/internal/query"
)

type fakeUsers struct {
	byID       map[uuid.UUID]*domain.User
	inserted   []command.InsertUser
	verifiedBy *uuid.UUID
	updated    *command.UpdateUser
	hash       *string
	activated  []uuid.UUID
	passwords  map[uuid.UUID]string
	images     map[uuid.UUID]string
	deleted    []uuid.UUID
}

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{
		byID:      map[uuid.UUID]*domain.User{},
		passwords: map[uuid.UUID]string{},
		images:    map[uuid.UUID]string{},
	}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
}

func (f *fakeUsers) List(context.Context, query.List) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Insert(_ context.Context, cmd command.InsertUser, passwordHash string, verifiedBy *uuid.UUID) (*domain.User, error) {
	f.inserted = append(f.inserted, cmd)
	f.verifiedBy = verifiedBy
	u := &domain.User{
		ID:           uuid.New(),
		Name:         cmd.Name,
		Email:        cmd.Email,
		Username:     cmd.Username,
		PasswordHash: passwordHash,
		Activated:    cmd.Activated,
		Role:         cmd.Role,
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, id uuid.UUID, cmd command.UpdateUser, passwordHash *string) (*domain.User, error) {
	f.updated = &cmd
	f.hash = passwordHash
	return f.FindByID(context.Background(), id)
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) Activate(_ context.Context, id uuid.UUID) error {
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.passwords[id] = passwordHash
	return nil
}

func (f *fakeUsers) SetProfileImage(_ context.Context, userID uuid.UUID, imageURL string) (*domain.ProfileImage, error) {
	f.images[userID] = imageURL
	return &domain.ProfileImage{ID: uuid.New(), UserID: userID, URL: imageURL}, nil
}

type fakePrivacy struct {
	prefs  map[uuid.UUID]*domain.PrivacyPreferences
	update *command.UpdatePrivacyPreferences
}

func (f *fakePrivacy) Get(_ context.Context, userID uuid.UUID) (*domain.PrivacyPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceUserPrivacyPreferences)
}

func (f *fakePrivacy) Update(ctx context.Context, userID uuid.UUID, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error) {
	f.update = &cmd
	return f.Get(ctx, userID)
}

type fakeTokens struct {
	resource apierr.Resource
	tokens   map[uuid.UUID]*domain.Token
	used     []uuid.UUID
	purged   int64
}

func newFakeTokens(resource apierr.Resource) *fakeTokens {
	return &fakeTokens{resource: resource, tokens: map[uuid.UUID]*domain.Token{}}
}

func (f *fakeTokens) Insert(_ context.Context, userID uuid.UUID, expireAt time.Time) (*domain.Token, error) {
	t := &domain.Token{ID: uuid.New(), UserID: userID, ExpireAt: expireAt}
	f.tokens[t.ID] = t
	return t, nil
}

func (f *fakeTokens) FindByID(_ context.Context, id uuid.UUID) (*domain.Token, error) {
	if t, ok := f.tokens[id]; ok {
		return t, nil
	}
	return nil, apierr.ResourceNotFound(f.resource)
}

func (f *fakeTokens) MarkUsed(_ context.Context, id uuid.UUID) error {
	f.used = append(f.used, id)
	return nil
}

func (f *fakeTokens) DeleteExpired(context.Context) (int64, error) {
	return f.purged, nil
}

type fakeMailer struct {
	sent []mail.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeImages struct {
	key         string
	contentType string
}

func (f *fakeImages) Put(_ context.Context, key, contentType string, _ []byte) (string, error) {
	f.key = key
	f.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

type fakeFollowers struct {
	byID     map[uuid.UUID]*domain.Follower
	inserted int
	deleted  []uuid.UUID
	between  [][2]uuid.UUID
}

func (f *fakeFollowers) Insert(_ context.Context, followerID, followedID uuid.UUID, _ command.InsertFollower) (*domain.Follower, error) {
	f.inserted++
	return &domain.Follower{ID: uuid.New(), FollowerID: followerID, FollowedID: followedID}, nil
}

func (f *fakeFollowers) FindByID(_ context.Context, id uuid.UUID) (*domain.Follower, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceFollowers)
}

func (f *fakeFollowers) Update(ctx context.Context, id uuid.UUID, _ command.UpdateFollower) (*domain.Follower, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeFollowers) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFollowers) DeleteBetween(_ context.Context, a, b uuid.UUID) error {
	f.between = append(f.between, [2]uuid.UUID{a, b})
	return nil
}

type fakeBlocks struct {
	byID    map[uuid.UUID]*domain.BlockedUser
	blocked bool
	deleted []uuid.UUID
}

func (f *fakeBlocks) Insert(_ context.Context, blockerID, blockedID uuid.UUID) (*domain.BlockedUser, error) {
	return &domain.BlockedUser{ID: uuid.New(), BlockerID: blockerID, BlockedID: blockedID}, nil
}

func (f *fakeBlocks) FindByID(_ context.Context, id uuid.UUID) (*domain.BlockedUser, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceBlockedUsers)
}

func (f *fakeBlocks) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBlocks) Blocked(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return f.blocked, nil
}
