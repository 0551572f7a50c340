// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aischii/mangaWebsite/internal/platform/apperr"
	"github.com/Aischii/mangaWebsite/internal/platform/database/schema"
	"github.com/Aischii/mangaWebsite/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var userColumns = strings.Join(schema.Users.Columns(), ", ")

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Nickname,
		&user.Avatar,
		&user.FamilySafe,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves a user record by primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or STORAGE_UNAVAILABLE
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.Users.Table, schema.Users.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or STORAGE_UNAVAILABLE
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.Users.Table, schema.Users.Username)

	user, err := scanUser(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}
	return user, nil
}

/*
Create persists a new user record.

Description: The database assigns the ID and creation timestamp; both are
written back into the entity.

Returns:
  - error: apperr.Conflict when the username is taken
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s`,
		schema.Users.Table,
		schema.Users.Username, schema.Users.PasswordHash, schema.Users.Role,
		schema.Users.Nickname, schema.Users.Avatar, schema.Users.FamilySafe,
		schema.Users.ID, schema.Users.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Nickname,
		user.Avatar,
		user.FamilySafe,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username is already taken")
		}
		return dberr.Wrap(err, "User")
	}
	return nil
}

// UpdateProfile replaces the nickname and avatar of a user.
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, id int64, nickname, avatar string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.Users.Table, schema.Users.Nickname, schema.Users.Avatar, schema.Users.ID)

	return repository.execOne(context, query, id, nickname, avatar)
}

// SetFamilySafe stores the family-safe preference.
func (repository *PostgresUserRepository) SetFamilySafe(context context.Context, id int64, enabled bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.FamilySafe, schema.Users.ID)

	return repository.execOne(context, query, id, enabled)
}

// SetRole changes the role of the named account.
func (repository *PostgresUserRepository) SetRole(context context.Context, username string, role string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.Users.Table, schema.Users.Role, schema.Users.Username)

	return repository.execOne(context, query, username, role)
}

/*
FamilySafe returns only the stored family-safe flag.

Description: Runs on every request of a logged-in viewer, so it reads a
single column instead of the whole row.
*/
func (repository *PostgresUserRepository) FamilySafe(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Users.FamilySafe, schema.Users.Table, schema.Users.ID)

	var enabled bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&enabled); err != nil {
		return true, dberr.Wrap(err, "User")
	}
	return enabled, nil
}

// execOne runs an update and reports NOT_FOUND when no row matched.
func (repository *PostgresUserRepository) execOne(context context.Context, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}
