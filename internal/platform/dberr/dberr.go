// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes we classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
//
// The resource names what was being touched ("Manga", "Chapter") and shows up
// in the client-facing message for not-found and conflict cases.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified further down
	if apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case codeUniqueViolation:
			conflict := apperr.Conflict(fmt.Sprintf("%s already exists", resource))
			conflict.Cause = err
			return conflict
		case codeForeignKeyViolation:
			missing := apperr.NotFound(resource)
			missing.Cause = err
			return missing
		}
	}

	return apperr.StorageUnavailable(err)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == codeUniqueViolation
}
