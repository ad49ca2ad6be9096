package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
)

type Task struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	ProjectID *int64 `json:"project_id"`
	UserID    int64  `json:"user_id"`
}

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) List(ctx context.Context, userID int64) ([]Task, error) {
	query, args, err := sq.Select("id", "title", "status", "project_id", "user_id").
		From("tasks").
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

	tasks := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.ProjectID, &t.UserID); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Create(ctx context.Context, t Task) (Task, error) {
	query, args, err := sq.Insert("tasks").
		Columns("title", "status", "project_id", "user_id").
		Values(t.Title, t.Status, t.ProjectID, t.UserID).
		ToSql()
	if err != nil {
		return Task{}, err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Task{}, err
	}

	t.ID, err = res.LastInsertId()
	return t, err
}

func (s *TaskStore) Get(ctx context.Context, id, userID int64) (Task, error) {
	query, args, err := sq.Select("id", "title", "status", "project_id", "user_id").
		From("tasks").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return Task{}, err
	}

	var t Task
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.Title, &t.Status, &t.ProjectID, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *TaskStore) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := sq.Delete("tasks").
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
