// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. Session tokens are HS256 JWTs carried in a cookie; each one
// names a server-side session id so that logout can revoke it before expiry.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a session token.
//
// Custom claims are abbreviated to keep the cookie small.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID    int64  `json:"uid"`
	Username  string `json:"unm"`
	Role      string `json:"rol"`
	SessionID string `json:"sid"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (claims *AuthClaims) IsAdmin() bool {
	return claims != nil && UserRole(claims.Role).AtLeast(RoleAdmin)
}

// TokenService signs and verifies session tokens with a shared secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: session secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// GenerateSessionToken creates a signed token for the given user and session id.
func (service *TokenService) GenerateSessionToken(userID int64, username, role, sessionID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
			ID:        sessionID,
		},
		UserID:    userID,
		Username:  username,
		Role:      role,
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, issuer and expiry of a token string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
