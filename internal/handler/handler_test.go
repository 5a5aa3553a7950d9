package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/auth"
	"github.com/sumire/hess/internal/command"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/handler"
	"github.com/sumire/hess/internal/query"
	"github.com/sumire/hess/internal/service"
	"github.com/sumire/hess/internal/upload"
)

type directory map[uuid.UUID]*domain.User

func (d directory) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, apierr.ResourceNotFound(apierr.ResourceUsers)
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, cmd command.Login) (*service.Session, error) {
	if cmd.Password != "right-password" {
		return nil, apierr.InvalidCredentials()
	}
	return &service.Session{Token: "signed", User: &domain.User{Username: cmd.Login}}, nil
}
func (stubAuth) GoogleAuthURL(state string) string { return "https://accounts.example.com/?state=" + state }
func (stubAuth) GitHubAuthURL(state string) string { return "https://github.example.com/?state=" + state }
func (stubAuth) GoogleCallback(context.Context, string) (*service.Session, error) {
	return nil, apierr.InvalidCredentials()
}
func (stubAuth) GitHubCallback(context.Context, string) (*service.Session, error) {
	return nil, apierr.InvalidCredentials()
}

type stubUsers struct {
	users   directory
	list    query.List
	created *command.InsertUser
	updated *command.UpdateUser
	image   *upload.Image
	failGet error
}

func (s *stubUsers) Create(_ context.Context, _ *domain.User, cmd command.InsertUser) (*domain.User, error) {
	s.created = &cmd
	return &domain.User{ID: uuid.New(), Username: cmd.Username}, nil
}
func (s *stubUsers) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.users.FindByID(ctx, id)
}
func (s *stubUsers) List(_ context.Context, list query.List) ([]domain.User, error) {
	s.list = list
	return []domain.User{}, nil
}
func (s *stubUsers) Update(ctx context.Context, _ *domain.User, id uuid.UUID, cmd command.UpdateUser) (*domain.User, error) {
	s.updated = &cmd
	return s.users.FindByID(ctx, id)
}
func (s *stubUsers) Delete(context.Context, *domain.User, uuid.UUID) error { return nil }
func (s *stubUsers) Confirm(context.Context, uuid.UUID) error {
	return apierr.UserConfirmationTokenExpired()
}
func (s *stubUsers) RequestPasswordReset(context.Context, command.RequestPasswordReset) error {
	return nil
}
func (s *stubUsers) ResetPassword(context.Context, uuid.UUID, command.ResetPassword) error {
	return nil
}
func (s *stubUsers) SetProfileImage(_ context.Context, actor *domain.User, img *upload.Image) (*domain.ProfileImage, error) {
	s.image = img
	return &domain.ProfileImage{ID: uuid.New(), UserID: actor.ID, URL: "https://cdn.example.com/x.png"}, nil
}

type stubSocial struct {
	followed uuid.UUID
	privacy  *command.UpdatePrivacyPreferences
}

func (s *stubSocial) Follow(_ context.Context, actor *domain.User, id uuid.UUID, _ command.InsertFollower) (*domain.Follower, error) {
	s.followed = id
	return &domain.Follower{ID: uuid.New(), FollowerID: actor.ID, FollowedID: id, WatchNewHesses: true}, nil
}
func (s *stubSocial) UpdateFollow(context.Context, *domain.User, uuid.UUID, command.UpdateFollower) (*domain.Follower, error) {
	return nil, apierr.ResourceNotFound(apierr.ResourceFollowers)
}
func (s *stubSocial) Unfollow(context.Context, *domain.User, uuid.UUID) error { return nil }
func (s *stubSocial) Block(_ context.Context, actor *domain.User, id uuid.UUID) (*domain.BlockedUser, error) {
	return &domain.BlockedUser{ID: uuid.New(), BlockerID: actor.ID, BlockedID: id}, nil
}
func (s *stubSocial) Unblock(context.Context, *domain.User, uuid.UUID) error {
	return apierr.Unauthorized()
}
func (s *stubSocial) PrivacyPreferences(_ context.Context, actor *domain.User) (*domain.PrivacyPreferences, error) {
	return &domain.PrivacyPreferences{UserID: actor.ID}, nil
}
func (s *stubSocial) UpdatePrivacyPreferences(_ context.Context, actor *domain.User, cmd command.UpdatePrivacyPreferences) (*domain.PrivacyPreferences, error) {
	s.privacy = &cmd
	return &domain.PrivacyPreferences{UserID: actor.ID}, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	tokens  *auth.Tokens
	users   *stubUsers
	social  *stubSocial
	member  *domain.User
	manager *domain.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := auth.NewTokens("handler-test-secret", 1)
	require.NoError(t, err)

	member := &domain.User{ID: uuid.New(), Username: "member", Role: domain.UserRoleUser, Activated: true}
	manager := &domain.User{ID: uuid.New(), Username: "manager", Role: domain.UserRoleManager, Activated: true}
	dir := directory{member.ID: member, manager.ID: manager}

	s := &testServer{
		t:       t,
		tokens:  tokens,
		users:   &stubUsers{users: dir},
		social:  &stubSocial{},
		member:  member,
		manager: manager,
	}
	s.handler = handler.NewRouter(handler.Deps{
		Gate:   auth.NewGate(tokens, dir),
		Auth:   stubAuth{},
		Users:  s.users,
		Social: s.social,
	})
	return s
}

func (s *testServer) bearer(u *domain.User) string {
	tok, err := s.tokens.Issue(u.ID)
	require.NoError(s.t, err)
	return "Bearer " + string(tok)
}

func (s *testServer) do(method, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apierr.Response {
	t.Helper()
	var resp apierr.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)
	member := s.bearer(s.member)
	manager := s.bearer(s.manager)

	tests := []struct {
		name    string
		method  string
		path    string
		authz   string
		body    string
		status  int
		code    string
		details any
	}{
		{"unknown route", http.MethodGet, "/api/v1/nope", "", "", 404, "ROUTE_NOT_FOUND", nil},
		{"wrong method", http.MethodDelete, "/health", "", "", 404, "ROUTE_NOT_FOUND", nil},
		{"missing header", http.MethodGet, "/api/v1/users", "", "", 401, "NOT_LOGGED_IN", nil},
		{"malformed header", http.MethodGet, "/api/v1/users", "Token abc", "", 401, "NOT_LOGGED_IN", nil},
		{"bad token", http.MethodGet, "/api/v1/users", "Bearer abc.def.ghi", "", 401, "INVALID_JWT_TOKEN", nil},
		{"role required", http.MethodPost, "/api/v1/users", member, `{}`, 403, "UNAUTHORIZED", nil},
		{"bad id", http.MethodGet, "/api/v1/users/42", member, "", 400, "INVALID_ID_PARAM", "USERS"},
		{"bad follower id", http.MethodDelete, "/api/v1/followers/x", member, "", 400, "INVALID_ID_PARAM", "FOLLOWERS"},
		{"bad block id", http.MethodDelete, "/api/v1/blocks/x", member, "", 400, "INVALID_ID_PARAM", "BLOCKED_USERS"},
		{"bad confirmation id", http.MethodPost, "/api/v1/user-confirmations/x", "", "", 400, "INVALID_ID_PARAM", "USER_CONFIRMATION_TOKEN"},
		{"not found", http.MethodGet, "/api/v1/users/" + uuid.NewString(), member, "", 404, "RESOURCE_NOT_FOUND", "USERS"},
		{"size zero", http.MethodGet, "/api/v1/users?size=0", member, "", 400, "INVALID_PAGINATION_SIZE_QUERY_FIELD", "ZERO"},
		{"page digits", http.MethodGet, "/api/v1/users?page=x", member, "", 400, "INVALID_PAGINATION_PAGE_QUERY_FIELD", "INVALID_DIGIT"},
		{"sort field", http.MethodGet, "/api/v1/users?sort=email", member, "", 400, "INVALID_SORTING_QUERY_FIELD", "email"},
		{"sort syntax", http.MethodGet, "/api/v1/users?sort=name:up", member, "", 400, "INVALID_SORTING_QUERY_SYNTAX", nil},
		{"expired confirmation", http.MethodPost, "/api/v1/user-confirmations/" + uuid.NewString(), "", "", 401, "USER_CONFIRMATION_TOKEN_EXPIRED", nil},
		{"bad credentials", http.MethodPost, "/api/v1/auth/login", "", `{"login":"jane","password":"nope"}`, 401, "INVALID_CREDENTIALS", nil},
		{"not owner", http.MethodDelete, "/api/v1/blocks/" + uuid.NewString(), manager, "", 403, "UNAUTHORIZED", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.authz, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.details, resp.Details)
		})
	}
}

func TestBodyValidation(t *testing.T) {
	s := newTestServer(t)
	manager := s.bearer(s.manager)

	t.Run("not json", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/users", manager, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"code":"BODY_VALIDATION_ERRORS","details":[{"type":"INVALID_JSON_BODY"}]}`, rec.Body.String())
	})

	t.Run("field errors", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/password-resets", "", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "BODY_VALIDATION_ERRORS", resp.Code)
		details, ok := resp.Details.([]any)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, "INVALID_EMAIL_FORMAT", details[0].(map[string]any)["type"])
	})
}

func TestInternalErrorIsHidden(t *testing.T) {
	s := newTestServer(t)
	s.users.failGet = goerr.Wrap(errors.New("connection refused"), "find user")

	rec := s.do(http.MethodGet, "/api/v1/users/"+s.member.ID.String(), s.bearer(s.member), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_SERVER_ERROR","details":null}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	member := s.bearer(s.member)

	t.Run("me", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/auth/me", member, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"member"`)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("list defaults", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/users?sort=name:desc", member, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, query.Page{Number: 1, Size: query.DefaultPageSize}, s.users.list.Page)
		assert.Equal(t, []query.Order{{Column: "u.name", Descending: true}}, s.users.list.Order)
	})

	t.Run("create", func(t *testing.T) {
		body := `{"name":"Jane","email":"jane@example.com","username":"jane","password":"long-enough",
			"verified":false,"activated":false,"gender":"FEMALE","userRole":"USER"}`
		rec := s.do(http.MethodPost, "/api/v1/users", s.bearer(s.manager), body)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.NotNil(t, s.users.created)
		assert.Equal(t, "jane", s.users.created.Username)
	})

	t.Run("update with null bio", func(t *testing.T) {
		rec := s.do(http.MethodPatch, "/api/v1/users/"+s.member.ID.String(), member, `{"bio":null}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, s.users.updated)
		assert.True(t, s.users.updated.Bio.IsNull())
	})

	t.Run("password reset request", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/password-resets", "", `{"email":"who@example.com"}`)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("login", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/auth/login", "", `{"login":"jane","password":"right-password"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token":"signed"`)
	})
}

func TestOAuthStateCheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/v1/auth/google", "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "state=")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "oauth_state=")

	rec = s.do(http.MethodGet, "/api/v1/auth/github/callback?code=abc&state=forged", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec).Code)
}

func TestSocialRoutes(t *testing.T) {
	s := newTestServer(t)
	member := s.bearer(s.member)

	rec := s.do(http.MethodPost, "/api/v1/users/"+s.manager.ID.String()+"/followers", member, `{"watchLikes":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, s.manager.ID, s.social.followed)

	rec = s.do(http.MethodPatch, "/api/v1/followers/"+uuid.NewString(), member, `{"watchLikes":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BODY_VALIDATION_ERRORS", decodeError(t, rec).Code)

	rec = s.do(http.MethodPatch, "/api/v1/me/privacy-preferences", member, `{"whoCanLike":["FOLLOWERS"],"whoCanReply":null}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.social.privacy)
	assert.Equal(t, []domain.WhoCan{domain.WhoCanFollowers}, s.social.privacy.WhoCanLike.Value())
	assert.True(t, s.social.privacy.WhoCanReply.IsNull())
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestProfileImage(t *testing.T) {
	s := newTestServer(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	send := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/me/profile-image", body)
		req.Header.Set("Authorization", s.bearer(s.member))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("not multipart", func(t *testing.T) {
		rec := send(bytes.NewBufferString("{}"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "NO_IMAGE", decodeError(t, rec).Code)
	})

	t.Run("wrong part", func(t *testing.T) {
		body, ct := multipartBody(t, "avatar", "me.png", png)
		rec := send(body, ct)
		assert.Equal(t, "NO_IMAGE", decodeError(t, rec).Code)
	})

	t.Run("not an image", func(t *testing.T) {
		body, ct := multipartBody(t, "image", "me.txt", []byte("hello there"))
		rec := send(body, ct)
		assert.Equal(t, "NOT_AN_IMAGE", decodeError(t, rec).Code)
	})

	t.Run("ok", func(t *testing.T) {
		body, ct := multipartBody(t, "image", "me.png", png)
		rec := send(body, ct)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotNil(t, s.users.image)
		assert.Equal(t, "image/png", s.users.image.ContentType)
	})
}
