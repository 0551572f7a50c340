// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/users/auth"
)

// # Test Doubles

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int64]*auth.User)}
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == user.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, id int64, nickname, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Nickname, user.Avatar = nickname, avatar
	return nil
}

func (m *memoryUsers) SetFamilySafe(_ context.Context, id int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return apperr.NotFound("User")
	}
	user.FamilySafe = enabled
	return nil
}

func (m *memoryUsers) FamilySafe(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return true, apperr.NotFound("User")
	}
	return user.FamilySafe, nil
}

func (m *memoryUsers) SetRole(_ context.Context, username string, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Username == username {
			user.Role = sec.UserRole(role)
			return nil
		}
	}
	return apperr.NotFound("User")
}

type fixture struct {
	service *auth.Service
	users   *memoryUsers
	tokens  *sec.TokenService
	redis   *miniredis.Miniredis
	disk    *storage.Disk
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tokens, err := sec.NewTokenService("test-secret", "mangasite")
	require.NoError(t, err)

	disk, err := storage.NewDisk(t.TempDir(), "/media")
	require.NoError(t, err)

	users := newMemoryUsers()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(users, auth.NewSessionRepository(client), tokens, disk, time.Hour, logger)
	return &fixture{service: service, users: users, tokens: tokens, redis: server, disk: disk}
}

// # Tests

/*
TestRegister validates username and password rules.
*/
func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{"valid", "reader_01", "secret1", ""},
		{"too_short", "ab", "secret1", apperr.CodeValidation},
		{"too_long", strings.Repeat("a", 33), "secret1", apperr.CodeValidation},
		{"bad_chars", "bad name!", "secret1", apperr.CodeValidation},
		{"short_password", "reader_02", "12345", apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user, err := f.service.Register(context.Background(), auth.RegisterInput{Username: tt.username, Password: tt.password})

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, sec.RoleUser, user.Role)
			assert.True(t, user.FamilySafe)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

/*
TestRegister_DuplicateUsername verifies a taken username is a conflict.
*/
func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret2"})
	assert.True(t, apperr.IsConflict(err))
}

/*
TestLoginLogout covers the session lifecycle from login to revocation.
*/
func TestLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	session, err := f.service.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.User.Username)

	claims, err := f.tokens.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	active, err := f.service.SessionActive(ctx, claims.SessionID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, time.Hour, f.redis.TTL("auth:session:"+claims.SessionID))

	require.NoError(t, f.service.Logout(ctx, claims.SessionID))

	active, err = f.service.SessionActive(ctx, claims.SessionID)
	require.NoError(t, err)
	assert.False(t, active)
}

/*
TestLogin_GenericFailure verifies unknown users and wrong passwords look the same.
*/
func TestLogin_GenericFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := f.service.Login(ctx, "alice", "nope-nope")
	_, unknownUser := f.service.Login(ctx, "bob", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, apperr.CodeUnauthorized, apperr.As(unknownUser).Code)
}

/*
TestUpdateProfile verifies nickname edits and avatar storage.
*/
func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	nickname := "  Ally  "
	avatar := storage.Source{
		Name: "me.png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("png")), nil },
	}

	profile, err := f.service.UpdateProfile(ctx, user.ID, auth.ProfileInput{Nickname: &nickname, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Ally", profile.Nickname)
	assert.Equal(t, "Ally", profile.DisplayName)
	assert.Equal(t, "/media/_avatars/1.png", profile.AvatarURL)

	empty := ""
	profile, err = f.service.UpdateProfile(ctx, user.ID, auth.ProfileInput{Nickname: &empty})
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.DisplayName)
	assert.NotEmpty(t, profile.AvatarURL)

	bad := storage.Source{Name: "virus.exe", Open: avatar.Open}
	_, err = f.service.UpdateProfile(ctx, user.ID, auth.ProfileInput{Avatar: &bad})
	assert.Equal(t, apperr.CodeValidation, apperr.As(err).Code)
}

/*
TestToggleFamilySafe verifies the stored flag flips each call.
*/
func TestToggleFamilySafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	enabled, err := f.service.ToggleFamilySafe(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, enabled)

	stored, err := f.service.FamilySafe(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored)

	enabled, err = f.service.ToggleFamilySafe(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, enabled)
}

/*
TestEnsureAdmin covers both the create and the promote paths.
*/
func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	password, err := f.service.EnsureAdmin(ctx, "root", "")
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	session, err := f.service.Login(ctx, "root", password)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, session.User.Role)

	_, err = f.service.Register(ctx, auth.RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	password, err = f.service.EnsureAdmin(ctx, "alice", "ignored")
	require.NoError(t, err)
	assert.Empty(t, password)

	promoted, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, promoted.Role)
}

/*
TestSetRole rejects unknown roles and missing users.
*/
func TestSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, apperr.CodeValidation, apperr.As(f.service.SetRole(ctx, "alice", "overlord")).Code)
	assert.True(t, apperr.IsNotFound(f.service.SetRole(ctx, "ghost", sec.RoleAdmin)))
}
