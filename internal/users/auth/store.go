// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	// FindByID returns the account with the given ID, or NOT_FOUND.
	FindByID(context context.Context, id int64) (*User, error)

	// FindByUsername returns the account with the given username, or NOT_FOUND.
	FindByUsername(context context.Context, username string) (*User, error)

	// Create inserts the user and fills in ID and CreatedAt.
	// A taken username is reported as CONFLICT.
	Create(context context.Context, user *User) error

	// UpdateProfile replaces nickname and avatar.
	UpdateProfile(context context.Context, id int64, nickname, avatar string) error

	// SetFamilySafe stores the family-safe preference.
	SetFamilySafe(context context.Context, id int64, enabled bool) error

	// FamilySafe reads the stored family-safe preference.
	FamilySafe(context context.Context, id int64) (bool, error)

	// SetRole changes the role of the named account, or NOT_FOUND.
	SetRole(context context.Context, username string, role string) error
}

// # Session Data Access

// SessionRepository tracks live sessions so that logout revokes a token
// before its signed expiry.
type SessionRepository interface {

	// Create records a session id for the user that expires after ttl.
	Create(context context.Context, sessionID string, userID int64, ttl time.Duration) error

	// Exists reports whether the session is still live.
	Exists(context context.Context, sessionID string) (bool, error)

	// Delete revokes the session. Deleting a missing session is not an error.
	Delete(context context.Context, sessionID string) error
}
