package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
	DisplayName    string `json:"display_name"`
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, email, hashedPassword, displayName string) (User, error) {
	query, args, err := sq.Insert("users").
		Columns("email", "hashed_password", "display_name").
		Values(email, hashedPassword, displayName).
		ToSql()
	if err != nil {
		return User{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}

	return User{ID: id, Email: email, HashedPassword: hashedPassword, DisplayName: displayName}, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getOne(ctx, sq.Eq{"email": email})
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (User, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

func (s *UserStore) getOne(ctx context.Context, where sq.Eq) (User, error) {
	query, args, err := sq.Select("id", "email", "hashed_password", "display_name").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return User{}, err
	}

	var u User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
