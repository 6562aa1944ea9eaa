package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

type LinkRepo struct {
	pool *pgxpool.Pool
}

func NewLinkRepo(pool *pgxpool.Pool) *LinkRepo {
	return &LinkRepo{pool: pool}
}

func (r *LinkRepo) List(ctx context.Context, userID string) ([]model.Link, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, task_id, note_id, created_at
		FROM task_note_links
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.ID, &l.UserID, &l.TaskID, &l.NoteID, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Create inserts the edge. Both endpoints must belong to the link's user; a second edge for the
// same pair fails with ErrorConflict.
func (r *LinkRepo) Create(ctx context.Context, l model.Link) (model.Link, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO task_note_links (user_id, task_id, note_id)
		SELECT $1, t.id, n.id
		FROM tasks t, notes n
		WHERE t.id = $2 AND t.user_id = $1 AND n.id = $3 AND n.user_id = $1
		RETURNING id, user_id, task_id, note_id, created_at
	`, l.UserID, l.TaskID, l.NoteID).Scan(&l.ID, &l.UserID, &l.TaskID, &l.NoteID, &l.CreatedAt)
	return l, mapError(err)
}

func (r *LinkRepo) Delete(ctx context.Context, userID, taskID, noteID string) error {
	cmd, err := r.pool.Exec(ctx, `
		DELETE FROM task_note_links WHERE user_id = $1 AND task_id = $2 AND note_id = $3
	`, userID, taskID, noteID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}
