package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/planner-api/internal/model"
)

const accountColumns = `user_id, access_token, COALESCE(subscription_id, ''), COALESCE(client_state, ''),
	next_sync_at, last_synced_at, COALESCE(last_error, '')`

type MailRepo struct {
	pool *pgxpool.Pool
}

func NewMailRepo(pool *pgxpool.Pool) *MailRepo {
	return &MailRepo{pool: pool}
}

func (r *MailRepo) FindSyncedEmail(ctx context.Context, userID, emailID string) (model.SyncedEmail, error) {
	e := model.SyncedEmail{UserID: userID, EmailID: emailID}
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(task_id::text, ''), email_subject, email_from
		FROM synced_emails
		WHERE user_id = $1 AND email_id = $2
	`, userID, emailID).Scan(&e.TaskID, &e.Subject, &e.From)
	return e, mapError(err)
}

func (r *MailRepo) SaveSyncedEmail(ctx context.Context, e model.SyncedEmail) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
		INSERT INTO synced_emails (user_id, task_id, email_id, email_subject, email_from)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5)
		ON CONFLICT (user_id, email_id) DO NOTHING
	`, e.UserID, e.TaskID, e.EmailID, e.Subject, e.From)
	if err != nil {
		return false, mapError(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *MailRepo) Upsert(ctx context.Context, a model.MailAccount) (model.MailAccount, error) {
	saved, err := scanAccount(r.pool.QueryRow(ctx, `
		INSERT INTO mail_accounts (user_id, access_token, subscription_id, client_state, next_sync_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), now())
		ON CONFLICT (user_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			subscription_id = EXCLUDED.subscription_id,
			client_state = EXCLUDED.client_state,
			sync_enabled = true,
			next_sync_at = now(),
			last_error = NULL
		RETURNING `+accountColumns,
		a.UserID, a.AccessToken, a.SubscriptionID, a.ClientState,
	))
	return saved, mapError(err)
}

func (r *MailRepo) FindBySubscription(ctx context.Context, subscriptionID string) (model.MailAccount, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM mail_accounts WHERE subscription_id = $1
	`, subscriptionID))
	return a, mapError(err)
}

// ClaimDue takes one account whose sync is due and pushes its next sync out by interval, so
// concurrent workers never pick the same account.
func (r *MailRepo) ClaimDue(ctx context.Context, interval time.Duration) (model.MailAccount, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `
		WITH claimed AS (
			SELECT user_id
			FROM mail_accounts
			WHERE sync_enabled AND next_sync_at <= now()
			ORDER BY next_sync_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE mail_accounts
		SET next_sync_at = now() + $1::float8 * interval '1 second'
		FROM claimed
		WHERE mail_accounts.user_id = claimed.user_id
		RETURNING mail_accounts.user_id, mail_accounts.access_token,
			COALESCE(mail_accounts.subscription_id, ''), COALESCE(mail_accounts.client_state, ''),
			mail_accounts.next_sync_at,
			mail_accounts.last_synced_at, COALESCE(mail_accounts.last_error, '')
	`, interval.Seconds()))
	return a, mapError(err)
}

func (r *MailRepo) RecordSync(ctx context.Context, userID string, syncErr error) error {
	var lastError *string
	if syncErr != nil {
		msg := syncErr.Error()
		lastError = &msg
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE mail_accounts
		SET last_synced_at = CASE WHEN $2::text IS NULL THEN now() ELSE last_synced_at END,
			last_error = $2
		WHERE user_id = $1
	`, userID, lastError)
	return err
}

func scanAccount(row pgx.Row) (model.MailAccount, error) {
	var a model.MailAccount
	err := row.Scan(&a.UserID, &a.AccessToken, &a.SubscriptionID, &a.ClientState, &a.NextSyncAt, &a.LastSyncedAt, &a.LastError)
	return a, err
}
