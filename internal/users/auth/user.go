// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user directory and session authentication.

It defines the User entity, the rules for registration and login, profile
edits, and the family-safe preference that filters adult titles.

# Architecture

  - Service: registration, login/logout, profile and role changes.
  - Repositories: PostgreSQL for accounts, Redis for live sessions.
  - Handler: JSON endpoints under /api/v1/auth and /api/v1/me.
*/
package auth

import (
	"time"

	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

// # Domain Entities

// User represents a registered reader or administrator.
type User struct {
	ID           int64        `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	Nickname     string       `json:"nickname"`
	Avatar       string       `json:"avatar"`
	FamilySafe   bool         `json:"family_safe"`
	CreatedAt    time.Time    `json:"created_at"`
}

// DisplayName is the nickname when set, otherwise the username.
func (user *User) DisplayName() string {
	if user.Nickname != "" {
		return user.Nickname
	}
	return user.Username
}

// Profile is the public view of a user, with the avatar as a URL.
type Profile struct {
	ID          int64        `json:"id"`
	Username    string       `json:"username"`
	Nickname    string       `json:"nickname"`
	DisplayName string       `json:"display_name"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Role        sec.UserRole `json:"role"`
	FamilySafe  bool         `json:"family_safe"`
	CreatedAt   time.Time    `json:"created_at"`
}

// # Limits

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 6
	NicknameMaxLength = 64

	// generatedPasswordBytes sizes passwords created for operator-made admins.
	generatedPasswordBytes = 12

	// familySafeCookieMaxAge keeps an anonymous visitor's choice for a year.
	familySafeCookieMaxAge = 365 * 24 * 60 * 60
)

// # Field Identifiers

const (
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldNickname   = "nickname"
	FieldAvatar     = "avatar"
	FieldRole       = "role"
	FieldFamilySafe = "family_safe"
)
