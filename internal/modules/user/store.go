// README: Users store backed by PostgreSQL.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.getOne(ctx, sq.Eq{"email": email})
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

func (s *Store) getOne(ctx context.Context, where sq.Eq) (*User, error) {
	query, args, err := psql.
		Select("id", "name", "email", "password_hash").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}
	var u User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
