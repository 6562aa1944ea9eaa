package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

// TaskRepository stores tasks and their subtasks. Every call is scoped to one user.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, userID, id string) (model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, userID, id string) error
	SetCompleted(ctx context.Context, userID, id string, completed bool) error
	SetSubtaskCompleted(ctx context.Context, userID, subtaskID string, completed bool) error
	SaveIdempotencyKey(ctx context.Context, userID, key, resourceID string) error
	GetIdempotencyKey(ctx context.Context, userID, key string) (string, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n model.Note) (model.Note, error)
	Get(ctx context.Context, userID, id string) (model.Note, error)
	List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, n model.Note) (model.Note, error)
	Delete(ctx context.Context, userID, id string) error
	AppendContent(ctx context.Context, userID, id, text string) (model.Note, error)
}

type LinkRepository interface {
	List(ctx context.Context, userID string) ([]model.Link, error)
	Create(ctx context.Context, l model.Link) (model.Link, error)
	Delete(ctx context.Context, userID, taskID, noteID string) error
}

// SyncLedger records which source emails already produced a task.
type SyncLedger interface {
	FindSyncedEmail(ctx context.Context, userID, emailID string) (model.SyncedEmail, error)
	// SaveSyncedEmail reports whether e was stored. False means another sync recorded the email first.
	SaveSyncedEmail(ctx context.Context, e model.SyncedEmail) (bool, error)
}

type MailAccountRepository interface {
	Upsert(ctx context.Context, a model.MailAccount) (model.MailAccount, error)
	FindBySubscription(ctx context.Context, subscriptionID string) (model.MailAccount, error)
	ClaimDue(ctx context.Context, interval time.Duration) (model.MailAccount, error)
	RecordSync(ctx context.Context, userID string, syncErr error) error
}
