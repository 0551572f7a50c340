// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/platform/validate"
	"github.com/Aischii/mangaWebsite/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs session tokens.
type TokenProvider interface {
	GenerateSessionToken(userID int64, username, role, sessionID string, timeToLive time.Duration) (string, error)
}

// AvatarStore persists avatar images and resolves them to URLs.
type AvatarStore interface {
	WriteAvatar(userID int64, source storage.Source) (string, error)
	URL(relative string) string
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	Username string
	Password string
}

// ProfileInput holds a profile edit. Nil fields are left unchanged.
type ProfileInput struct {
	Nickname *string
	Avatar   *storage.Source
}

// Service implements user authentication use cases.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	avatars           AvatarStore
	sessionTTL        time.Duration
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	avatars AvatarStore,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		avatars:           avatars,
		sessionTTL:        sessionTTL,
		logger:            logger,
	}
}

// SessionTTL is the lifetime of newly issued sessions.
func (service *Service) SessionTTL() time.Duration {
	return service.sessionTTL
}

// # Registration Flow

/*
Register creates a new reader account.

Description: Usernames are 3 to 32 characters of letters, digits, dot,
underscore or hyphen. New accounts start as readers with family-safe on.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: The persisted account
  - error: VALIDATION_ERROR, CONFLICT for a taken username, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, UsernameMinLength).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Username(FieldUsername, username).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	return service.createUser(context, username, input.Password, sec.RoleUser)
}

func (service *Service) createUser(context context.Context, username, password string, role sec.UserRole) (*User, error) {
	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth: failed to hash password: %w", err))
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		FamilySafe:   true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// # Session Flow

/*
Login verifies credentials and opens a session.

Description: Unknown usernames and wrong passwords produce the same error so
that account names cannot be enumerated.

Parameters:
  - context: context.Context
  - username: string
  - password: string

Returns:
  - *Session: Signed token and profile
  - error: UNAUTHORIZED or storage errors
*/
func (service *Service) Login(context context.Context, username, password string) (*Session, error) {
	invalid := apperr.Unauthorized("Invalid username or password")

	user, err := service.userRepository.FindByUsername(context, strings.TrimSpace(username))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		service.logger.WarnContext(context, "login_failed", slog.Int64("user_id", user.ID))
		return nil, invalid
	}

	sessionID := uuid.New()
	if err := service.sessionRepository.Create(context, sessionID, user.ID, service.sessionTTL); err != nil {
		return nil, apperr.StorageUnavailable(err)
	}

	token, err := service.tokenProvider.GenerateSessionToken(user.ID, user.Username, string(user.Role), sessionID, service.sessionTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth: failed to sign session token: %w", err))
	}

	service.logger.InfoContext(context, "user_logged_in", slog.Int64("user_id", user.ID))

	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(service.sessionTTL),
		User:      service.toProfile(user),
	}, nil
}

// Logout revokes the session so its token stops authenticating.
func (service *Service) Logout(context context.Context, sessionID string) error {
	if err := service.sessionRepository.Delete(context, sessionID); err != nil {
		return apperr.StorageUnavailable(err)
	}
	return nil
}

// SessionActive reports whether the session has not been revoked or expired.
func (service *Service) SessionActive(context context.Context, sessionID string) (bool, error) {
	return service.sessionRepository.Exists(context, sessionID)
}

// # Profile

// GetProfile returns the public view of a user.
func (service *Service) GetProfile(context context.Context, userID int64) (*Profile, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	profile := service.toProfile(user)
	return &profile, nil
}

/*
UpdateProfile changes the nickname and/or avatar.

Description: The avatar file is written before the row is updated; an empty
nickname clears it so the username is displayed instead.

Parameters:
  - context: context.Context
  - userID: int64
  - input: ProfileInput

Returns:
  - *Profile: The updated profile
  - error: VALIDATION_ERROR, NOT_FOUND or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, userID int64, input ProfileInput) (*Profile, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Nickname != nil {
		nickname := strings.TrimSpace(*input.Nickname)

		validator := &validate.Validator{}
		validator.MaxLen(FieldNickname, nickname, NicknameMaxLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		user.Nickname = nickname
	}

	if input.Avatar != nil {
		relative, err := service.avatars.WriteAvatar(userID, *input.Avatar)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) {
				return nil, validate.RequiredError(FieldAvatar, "Avatar must be a jpg, png, gif or webp image")
			}
			return nil, apperr.StorageUnavailable(err)
		}
		user.Avatar = relative
	}

	if err := service.userRepository.UpdateProfile(context, userID, user.Nickname, user.Avatar); err != nil {
		return nil, err
	}

	profile := service.toProfile(user)
	return &profile, nil
}

// FamilySafe returns the stored preference of a user.
func (service *Service) FamilySafe(context context.Context, userID int64) (bool, error) {
	return service.userRepository.FamilySafe(context, userID)
}

// ToggleFamilySafe flips the stored preference and returns the new value.
func (service *Service) ToggleFamilySafe(context context.Context, userID int64) (bool, error) {
	current, err := service.userRepository.FamilySafe(context, userID)
	if err != nil {
		return false, err
	}

	if err := service.userRepository.SetFamilySafe(context, userID, !current); err != nil {
		return false, err
	}

	service.logger.InfoContext(context, "family_safe_toggled",
		slog.Int64("user_id", userID),
		slog.Bool("enabled", !current),
	)
	return !current, nil
}

// # Administration

// SetRole changes the role of the named account.
func (service *Service) SetRole(context context.Context, username string, role sec.UserRole) error {
	if !role.Valid() {
		return validate.RequiredError(FieldRole, "Unknown role")
	}

	if err := service.userRepository.SetRole(context, username, string(role)); err != nil {
		return err
	}

	service.logger.InfoContext(context, "user_role_changed",
		slog.String("username", username),
		slog.String("role", string(role)),
	)
	return nil
}

/*
EnsureAdmin makes sure an administrator with the given username exists.

Description: An existing account is promoted and keeps its password. A new
account is created with the given password, or a generated one when empty.

Returns:
  - password: The password of a newly created account, empty when promoted
  - error: Validation or storage errors
*/
func (service *Service) EnsureAdmin(context context.Context, username, password string) (string, error) {
	_, err := service.userRepository.FindByUsername(context, username)
	switch {
	case err == nil:
		return "", service.SetRole(context, username, sec.RoleAdmin)
	case !apperr.IsNotFound(err):
		return "", err
	}

	if password == "" {
		password, err = sec.GenerateSecureToken(generatedPasswordBytes)
		if err != nil {
			return "", apperr.Internal(fmt.Errorf("auth: failed to generate password: %w", err))
		}
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MaxLen(FieldUsername, username, UsernameMaxLength).
		Username(FieldUsername, username).
		MinLen(FieldPassword, password, PasswordMinLength)
	if err := validator.Err(); err != nil {
		return "", err
	}

	if _, err := service.createUser(context, username, password, sec.RoleAdmin); err != nil {
		return "", err
	}
	return password, nil
}

// # Helpers

func (service *Service) toProfile(user *User) Profile {
	profile := Profile{
		ID:          user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		FamilySafe:  user.FamilySafe,
		CreatedAt:   user.CreatedAt,
	}
	if user.Avatar != "" && service.avatars != nil {
		profile.AvatarURL = service.avatars.URL(user.Avatar)
	}
	return profile
}
