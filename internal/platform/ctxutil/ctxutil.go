// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries per-request values through [context.Context]:
// the correlation id, the request logger, the session claims and the
// viewer's family-safe preference.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

// key is unexported so no other package can collide with these entries.
type key uint8

const (
	keyRequestID key = iota
	keyLogger
	keyClaims
	keyFamilySafe
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithAuthUser returns a new context with the provided session claims attached.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, user)
}

// GetAuthUser retrieves the [*sec.AuthClaims] from the [context.Context].
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(keyClaims).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// # Content Filtering

// WithFamilySafe records the viewer's effective family-safe preference.
func WithFamilySafe(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, keyFamilySafe, enabled)
}

// FamilySafe reports the viewer's family-safe preference.
// Absent means enabled: anonymous visitors start filtered.
func FamilySafe(ctx context.Context) bool {
	enabled, ok := ctx.Value(keyFamilySafe).(bool)
	if !ok {
		return true
	}
	return enabled
}
