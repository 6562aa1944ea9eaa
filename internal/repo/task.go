package repo

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
)

const taskColumns = `id, user_id, title, description, completed, priority, due_date,
	COALESCE(list_name, ''), COALESCE(category, ''), tags, version, created_at, updated_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	var created model.Task
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanTask(tx.QueryRow(ctx, `
			INSERT INTO tasks (user_id, title, description, completed, priority, due_date, list_name, category, tags)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)
			RETURNING `+taskColumns,
			t.UserID, t.Title, t.Description, t.Completed, string(t.Priority), dueArg(t.DueDate),
			t.ListName, t.Category, tagsArg(t.Tags),
		))
		if err != nil {
			return err
		}

		created.Subtasks = make([]model.Subtask, 0, len(t.Subtasks))
		for i, st := range t.Subtasks {
			s := model.Subtask{TaskID: created.ID, Title: st.Title, Completed: st.Completed, Position: i}
			if err := tx.QueryRow(ctx, `
				INSERT INTO subtasks (task_id, title, completed, position)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, s.TaskID, s.Title, s.Completed, s.Position).Scan(&s.ID); err != nil {
				return err
			}
			created.Subtasks = append(created.Subtasks, s)
		}
		return nil
	})
	return created, mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, userID, id string) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		return t, mapError(err)
	}

	subtasks, err := r.subtasks(ctx, `
		SELECT id, task_id, title, completed, position
		FROM subtasks
		WHERE task_id = $1
		ORDER BY position, id
	`, id)
	if err != nil {
		return t, err
	}
	t.Subtasks = subtasks[t.ID]
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
	return t, nil
}

// List returns the whole matching collection, newest first, with subtasks attached.
func (r *TaskRepo) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	query, args, err := listTasksQuery(userID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subtasks, err := r.subtasks(ctx, `
		SELECT s.id, s.task_id, s.title, s.completed, s.position
		FROM subtasks s
		JOIN tasks t ON t.id = s.task_id
		WHERE t.user_id = $1
		ORDER BY s.position, s.id
	`, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Subtasks = subtasks[tasks[i].ID]
		if tasks[i].Subtasks == nil {
			tasks[i].Subtasks = []model.Subtask{}
		}
	}
	return tasks, nil
}

// Update rewrites the editable fields when t.Version matches the stored version.
func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	updated, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, due_date = $6,
			list_name = NULLIF($7, ''), category = NULLIF($8, ''), tags = $9,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND version = $10
		RETURNING `+taskColumns,
		t.ID, t.UserID, t.Title, t.Description, string(t.Priority), dueArg(t.DueDate),
		t.ListName, t.Category, tagsArg(t.Tags), t.Version,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the task is gone or the version is stale.
		if _, getErr := r.Get(ctx, t.UserID, t.ID); errors.Is(getErr, ErrorNotFound) {
			return t, ErrorNotFound
		}
		return t, ErrorConflict
	}
	if err != nil {
		return t, mapError(err)
	}
	return r.Get(ctx, updated.UserID, updated.ID)
}

func (r *TaskRepo) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks SET completed = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`, id, userID, completed)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) SetSubtaskCompleted(ctx context.Context, userID, subtaskID string, completed bool) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE subtasks s SET completed = $3
		FROM tasks t
		WHERE s.id = $1 AND s.task_id = t.id AND t.user_id = $2
	`, subtaskID, userID, completed)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, userID, key, resourceID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (user_id, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, key) DO NOTHING
	`, userID, key, resourceID)
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, userID, key string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE user_id = $1 AND key = $2
	`, userID, key).Scan(&id)
	return id, mapError(err)
}

func (r *TaskRepo) subtasks(ctx context.Context, query string, arg any) (map[string][]model.Subtask, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	byTask := make(map[string][]model.Subtask)
	for rows.Next() {
		var s model.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.Completed, &s.Position); err != nil {
			return nil, err
		}
		byTask[s.TaskID] = append(byTask[s.TaskID], s)
	}
	return byTask, rows.Err()
}

func listTasksQuery(userID string, filter model.TaskFilter) (string, []any, error) {
	q := sq.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.ListName != nil {
		q = q.Where(sq.Eq{"list_name": *filter.ListName})
	}
	if filter.Category != nil && *filter.Category != organizer.AllCategory {
		q = q.Where(sq.Expr("COALESCE(NULLIF(category, ''), ?) = ?", organizer.DefaultCategory, *filter.Category))
	}
	if len(filter.Tags) > 0 {
		q = q.Where(sq.Expr("tags @> ?", filter.Tags))
	}
	if filter.Completed != nil {
		q = q.Where(sq.Eq{"completed": *filter.Completed})
	}
	return q.ToSql()
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t        model.Task
		priority string
		due      *time.Time
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &priority, &due,
		&t.ListName, &t.Category, &t.Tags, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	t.Priority = model.Priority(priority)
	if due != nil {
		d := model.DateOf(*due)
		t.DueDate = &d
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func dueArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
