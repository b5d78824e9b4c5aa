package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const userColumns = "id, name, email, password_hash, role, COALESCE(avatar, ''), " +
	"COALESCE(phone, ''), COALESCE(store_id, ''), created_at"

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.Id,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Avatar,
		&u.Phone,
		&u.StoreId,
		&u.CreatedAt,
	)

	return u, classify(err)
}

func (db *PgRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+userColumns,
		uuid.NewString(),
		params.Name,
		params.Email,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgRepository) GetUserById(ctx context.Context, id string) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1 LIMIT 1",
		id,
	)

	return scanUser(row)
}

func (db *PgRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1 LIMIT 1",
		email,
	)

	return scanUser(row)
}
