// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aischii/mangaWebsite/internal/platform/database/schema"
	"github.com/Aischii/mangaWebsite/internal/platform/dberr"
)

// # Social Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL social repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// targetTables maps each target type to the table and key it references.
var targetTables = map[TargetType][2]string{
	TargetManga:   {schema.Manga.Table, schema.Manga.ID},
	TargetChapter: {schema.Chapters.Table, schema.Chapters.ID},
	TargetComment: {schema.Comments.Table, schema.Comments.ID},
}

// TargetExists checks the row a target points at.
func (repository *PostgresRepository) TargetExists(context context.Context, target Target) (bool, error) {
	table, ok := targetTables[target.Type]
	if !ok {
		return false, nil
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, table[0], table[1])

	var exists bool
	if err := repository.pool.QueryRow(context, query, target.ID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "Target")
	}
	return exists, nil
}

// # Comments

// InsertComment stores the comment and fills in ID and CreatedAt.
func (repository *PostgresRepository) InsertComment(context context.Context, comment *Comment) error {
	c := schema.Comments
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s`,
		c.Table, c.UserID, c.TargetType, c.TargetID, c.ParentID, c.Body,
		c.ID, c.CreatedAt)

	err := repository.pool.QueryRow(context, query,
		comment.UserID,
		string(comment.Target.Type),
		comment.Target.ID,
		comment.ParentID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	return nil
}

// commentSelect joins the author so listings need a single query.
func commentSelect() string {
	c, u := schema.Comments, schema.Users
	return fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, u.%s, u.%s, u.%s
		FROM %s c
		JOIN %s u ON u.%s = c.%s`,
		c.ID, c.UserID, c.TargetType, c.TargetID, c.ParentID, c.Body, c.CreatedAt,
		u.Username, u.Nickname, u.Avatar,
		c.Table,
		u.Table, u.ID, c.UserID)
}

func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{}
	var targetType string

	err := row.Scan(
		&comment.ID,
		&comment.UserID,
		&targetType,
		&comment.Target.ID,
		&comment.ParentID,
		&comment.Body,
		&comment.CreatedAt,
		&comment.Author.Username,
		&comment.Author.Nickname,
		&comment.Author.Avatar,
	)
	if err != nil {
		return nil, err
	}

	comment.Target.Type = TargetType(targetType)
	return comment, nil
}

// FindComment returns one comment with its author.
func (repository *PostgresRepository) FindComment(context context.Context, id int64) (*Comment, error) {
	query := commentSelect() + fmt.Sprintf(` WHERE c.%s = $1`, schema.Comments.ID)

	comment, err := scanComment(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comment, nil
}

// ListComments returns every comment on a target, newest first.
func (repository *PostgresRepository) ListComments(context context.Context, target Target) ([]Comment, error) {
	c := schema.Comments
	query := commentSelect() + fmt.Sprintf(`
		WHERE c.%s = $1 AND c.%s = $2
		ORDER BY c.%s DESC, c.%s DESC`,
		c.TargetType, c.TargetID, c.CreatedAt, c.ID)

	rows, err := repository.pool.Query(context, query, string(target.Type), target.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Comment")
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comments, nil
}

// # Reactions

/*
UpsertReaction sets the user's reaction on a target.

Description: A single INSERT ... ON CONFLICT statement, so two concurrent
clicks by the same user leave exactly one row holding one of the emoji.
*/
func (repository *PostgresRepository) UpsertReaction(context context.Context, userID int64, target Target, emoji string) error {
	r := schema.Reactions
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%s, %s, %s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		r.Table, r.UserID, r.TargetType, r.TargetID, r.Emoji, r.UpdatedAt,
		r.UserID, r.TargetType, r.TargetID,
		r.Emoji, r.Emoji, r.UpdatedAt, r.UpdatedAt)

	if _, err := repository.pool.Exec(context, query, userID, string(target.Type), target.ID, emoji); err != nil {
		return dberr.Wrap(err, "Reaction")
	}
	return nil
}

// DeleteReaction removes the user's reaction if present.
func (repository *PostgresRepository) DeleteReaction(context context.Context, userID int64, target Target) error {
	r := schema.Reactions
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		r.Table, r.UserID, r.TargetType, r.TargetID)

	if _, err := repository.pool.Exec(context, query, userID, string(target.Type), target.ID); err != nil {
		return dberr.Wrap(err, "Reaction")
	}
	return nil
}

// FindUserReaction returns the user's emoji on a target, or "".
func (repository *PostgresRepository) FindUserReaction(context context.Context, userID int64, target Target) (string, error) {
	r := schema.Reactions
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		r.Emoji, r.Table, r.UserID, r.TargetType, r.TargetID)

	var emoji string
	err := repository.pool.QueryRow(context, query, userID, string(target.Type), target.ID).Scan(&emoji)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", dberr.Wrap(err, "Reaction")
	}
	return emoji, nil
}

// CountReactions returns emoji counts for one target.
func (repository *PostgresRepository) CountReactions(context context.Context, target Target) (map[string]int, error) {
	r := schema.Reactions
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM %s
		WHERE %s = $1 AND %s = $2
		GROUP BY %s`,
		r.Emoji, r.Table, r.TargetType, r.TargetID, r.Emoji)

	rows, err := repository.pool.Query(context, query, string(target.Type), target.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "Reaction")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var emoji string
		var count int
		if err := rows.Scan(&emoji, &count); err != nil {
			return nil, dberr.Wrap(err, "Reaction")
		}
		counts[emoji] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Reaction")
	}
	return counts, nil
}

/*
CountReactionsBulk returns emoji counts for many targets in one query.

Description: Same grouping as [PostgresRepository.CountReactions], with the
target id added to the GROUP BY and an ANY($2) filter over the id array.
*/
func (repository *PostgresRepository) CountReactionsBulk(context context.Context, targetType TargetType, ids []int64) (map[int64]map[string]int, error) {
	r := schema.Reactions
	query := fmt.Sprintf(`
		SELECT %s, %s, COUNT(*) FROM %s
		WHERE %s = $1 AND %s = ANY($2)
		GROUP BY %s, %s`,
		r.TargetID, r.Emoji, r.Table,
		r.TargetType, r.TargetID,
		r.TargetID, r.Emoji)

	rows, err := repository.pool.Query(context, query, string(targetType), ids)
	if err != nil {
		return nil, dberr.Wrap(err, "Reaction")
	}
	defer rows.Close()

	counts := make(map[int64]map[string]int)
	for rows.Next() {
		var targetID int64
		var emoji string
		var count int
		if err := rows.Scan(&targetID, &emoji, &count); err != nil {
			return nil, dberr.Wrap(err, "Reaction")
		}
		if counts[targetID] == nil {
			counts[targetID] = make(map[string]int)
		}
		counts[targetID][emoji] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Reaction")
	}
	return counts, nil
}
