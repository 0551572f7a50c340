// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

/*
TestPasswordHash verifies bcrypt round-trips and rejects wrong passwords.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, sec.CheckPasswordHash("hunter22", hash))
	assert.False(t, sec.CheckPasswordHash("hunter23", hash))
}

/*
TestTokenService verifies signing, verification, expiry and secret mismatch.
*/
func TestTokenService(t *testing.T) {
	service, err := sec.NewTokenService("s3cret", "mangasite")
	require.NoError(t, err)

	t.Run("round_trip", func(t *testing.T) {
		token, err := service.GenerateSessionToken(12, "mika", string(sec.RoleUser), "sid-1", time.Hour)
		require.NoError(t, err)

		claims, err := service.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(12), claims.UserID)
		assert.Equal(t, "mika", claims.Username)
		assert.Equal(t, "sid-1", claims.SessionID)
		assert.False(t, claims.IsAdmin())
	})

	t.Run("expired", func(t *testing.T) {
		token, err := service.GenerateSessionToken(12, "mika", string(sec.RoleUser), "sid-1", -time.Minute)
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("foreign_secret", func(t *testing.T) {
		other, err := sec.NewTokenService("other", "mangasite")
		require.NoError(t, err)
		token, err := other.GenerateSessionToken(1, "x", string(sec.RoleAdmin), "sid", time.Hour)
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("empty_secret", func(t *testing.T) {
		_, err := sec.NewTokenService("", "mangasite")
		assert.Error(t, err)
	})
}

/*
TestUserRole verifies the role hierarchy.
*/
func TestUserRole(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleUser))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("guest").Valid())
	assert.True(t, sec.RoleUser.Valid())
}

/*
TestGenerateSecureToken verifies tokens are distinct and non-empty.
*/
func TestGenerateSecureToken(t *testing.T) {
	a, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)
	b, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
