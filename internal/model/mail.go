package model

import "time"

// SyncedEmail is a ledger row recording that a source email already produced a task.
type SyncedEmail struct {
	UserID  string `json:"user_id"`
	TaskID  string `json:"task_id"`
	EmailID string `json:"email_id"`
	Subject string `json:"email_subject"`
	From    string `json:"email_from"`
}

type MailAccount struct {
	UserID         string     `json:"user_id"`
	AccessToken    string     `json:"-"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
	// ClientState is the secret shared with the mail provider when the subscription was created.
	// Change notifications must echo it back.
	ClientState    string     `json:"-"`
	NextSyncAt     time.Time  `json:"next_sync_at"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// InboundEmail is a message forwarded to the notes address by the inbound mail provider.
type InboundEmail struct {
	Sender    string
	Recipient string
	Subject   string
	BodyPlain string
	BodyHTML  string
}
