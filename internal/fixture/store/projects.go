package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	UserID      int64  `json:"user_id"`
}

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) List(ctx context.Context, userID int64) ([]Project, error) {
	query, args, err := sq.Select("id", "name", "description", "color", "user_id").
		From("projects").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	projects := make([]Project, 0)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.UserID); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectStore) Create(ctx context.Context, p Project) (Project, error) {
	query, args, err := sq.Insert("projects").
		Columns("name", "description", "color", "user_id").
		Values(p.Name, p.Description, p.Color, p.UserID).
		ToSql()
	if err != nil {
		return Project{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Project{}, err
	}

	p.ID, err = res.LastInsertId()
	return p, err
}

func (s *ProjectStore) Get(ctx context.Context, id, userID int64) (Project, error) {
	query, args, err := sq.Select("id", "name", "description", "color", "user_id").
		From("projects").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return Project{}, err
	}

	var p Project
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := sq.Delete("projects").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
