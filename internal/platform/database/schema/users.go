// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema names every table and column the repositories touch.

Queries are assembled with fmt.Sprintf over these names so that a column
rename is a one-line change here rather than a grep across the stores.
*/
package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	PasswordHash string
	Role         string
	Nickname     string
	Avatar       string
	FamilySafe   string
	CreatedAt    string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	PasswordHash: "password_hash",
	Role:         "role",
	Nickname:     "nickname",
	Avatar:       "avatar",
	FamilySafe:   "family_safe",
	CreatedAt:    "created_at",
}

// Columns returns every column in scan order.
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.PasswordHash, t.Role, t.Nickname, t.Avatar, t.FamilySafe, t.CreatedAt,
	}
}
