package repo

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
)

const noteColumns = `id, user_id, title, content, COALESCE(category, ''), created_at, updated_at`

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) Create(ctx context.Context, n model.Note) (model.Note, error) {
	created, err := scanNote(r.pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, content, category)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING `+noteColumns,
		n.UserID, n.Title, n.Content, n.Category,
	))
	return created, mapError(err)
}

func (r *NoteRepo) Get(ctx context.Context, userID, id string) (model.Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2
	`, id, userID))
	return n, mapError(err)
}

func (r *NoteRepo) List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error) {
	query, args, err := listNotesQuery(userID, filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, n model.Note) (model.Note, error) {
	updated, err := scanNote(r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $3, content = $4, category = NULLIF($5, ''), updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		n.ID, n.UserID, n.Title, n.Content, n.Category,
	))
	return updated, mapError(err)
}

func (r *NoteRepo) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM notes WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// AppendContent adds text after the existing content, separated by a blank line.
func (r *NoteRepo) AppendContent(ctx context.Context, userID, id, text string) (model.Note, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `
		UPDATE notes
		SET content = CASE WHEN content = '' THEN $3 ELSE content || E'\n\n' || $3 END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		id, userID, text,
	))
	return n, mapError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func listNotesQuery(userID string, filter model.NoteFilter) (string, []any, error) {
	q := sq.Select(noteColumns).
		From("notes").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar)

	if query := strings.TrimSpace(filter.Query); query != "" {
		pattern := "%" + likeEscaper.Replace(query) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"content": pattern},
		})
	}
	if filter.Category != nil && *filter.Category != organizer.AllCategory {
		q = q.Where(sq.Expr("COALESCE(NULLIF(category, ''), ?) = ?", organizer.DefaultCategory, *filter.Category))
	}
	return q.ToSql()
}

func scanNote(row pgx.Row) (model.Note, error) {
	var n model.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.Category, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
