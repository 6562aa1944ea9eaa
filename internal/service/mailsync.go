package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

const (
	EmailCategory  = "Email"
	noSubjectTitle = "(no subject)"
)

// MailClient reads messages from the user's mailbox.
type MailClient interface {
	FlaggedMessages(ctx context.Context, token string) ([]mail.Message, error)
	Message(ctx context.Context, token, id string) (mail.Message, error)
}

type SyncResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// MailSyncService turns flagged emails into tasks. The ledger guarantees one task per
// (user, email) pair.
type MailSyncService struct {
	client   MailClient
	tasks    repo.TaskRepository
	ledger   repo.SyncLedger
	accounts repo.MailAccountRepository
	interval time.Duration
	logger   *zap.Logger
}

func NewMailSyncService(
	client MailClient,
	tasks repo.TaskRepository,
	ledger repo.SyncLedger,
	accounts repo.MailAccountRepository,
	interval time.Duration,
	logger *zap.Logger,
) *MailSyncService {
	return &MailSyncService{
		client:   client,
		tasks:    tasks,
		ledger:   ledger,
		accounts: accounts,
		interval: interval,
		logger:   logger,
	}
}

// RegisterAccount stores the token and subscription used for background and webhook syncs.
// A subscription must come with the client state it was created with.
func (s *MailSyncService) RegisterAccount(ctx context.Context, userID, token, subscriptionID, clientState string) (model.MailAccount, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.MailAccount{}, fmt.Errorf("%w: access token is required", ErrValidation)
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID != "" && clientState == "" {
		return model.MailAccount{}, fmt.Errorf("%w: client state is required with a subscription", ErrValidation)
	}
	return s.accounts.Upsert(ctx, model.MailAccount{
		UserID:         userID,
		AccessToken:    token,
		SubscriptionID: subscriptionID,
		ClientState:    clientState,
	})
}

// SyncFlagged creates a task for every flagged email not seen before. A failure on one email is
// logged and counted, and the rest are still processed.
func (s *MailSyncService) SyncFlagged(ctx context.Context, userID, token string) (SyncResult, error) {
	var res SyncResult
	msgs, err := s.client.FlaggedMessages(ctx, token)
	if err != nil {
		return res, err
	}

	for _, m := range msgs {
		created, err := s.syncOne(ctx, userID, m)
		switch {
		case err != nil:
			res.Failed++
			s.logger.Error("email sync failed",
				zap.String("user_id", userID),
				zap.String("email_id", m.ID),
				zap.Error(err),
			)
		case created:
			res.Created++
		default:
			res.Skipped++
		}
	}

	s.logger.Info("flagged emails synced",
		zap.String("user_id", userID),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// SyncMessage handles a single message, typically named by a change notification. Messages that
// are not flagged are ignored.
func (s *MailSyncService) SyncMessage(ctx context.Context, userID, token, messageID string) (bool, error) {
	m, err := s.client.Message(ctx, token, messageID)
	if err != nil {
		return false, err
	}
	if !m.Flagged {
		return false, nil
	}
	return s.syncOne(ctx, userID, m)
}

// HandleNotifications syncs the messages named by a webhook batch and reports how many tasks were
// created. Notifications for unknown subscriptions, or with the wrong client state, are dropped.
func (s *MailSyncService) HandleNotifications(ctx context.Context, notifications []mail.Notification) int {
	created := 0
	for _, n := range notifications {
		account, err := s.accounts.FindBySubscription(ctx, n.SubscriptionID)
		if err != nil {
			s.logger.Warn("notification for unknown subscription",
				zap.String("subscription_id", n.SubscriptionID),
				zap.Error(err),
			)
			continue
		}
		if !n.Authentic(account.ClientState) {
			s.logger.Warn("notification with bad client state",
				zap.String("subscription_id", n.SubscriptionID),
				zap.String("user_id", account.UserID),
			)
			continue
		}

		ok, err := s.SyncMessage(ctx, account.UserID, account.AccessToken, n.MessageID())
		if err != nil {
			s.logger.Error("notification sync failed",
				zap.String("user_id", account.UserID),
				zap.String("email_id", n.MessageID()),
				zap.Error(err),
			)
			continue
		}
		if ok {
			created++
		}
	}
	return created
}

// SyncDue claims one account whose periodic sync is due and runs it. It reports false when
// nothing was due.
func (s *MailSyncService) SyncDue(ctx context.Context) (bool, error) {
	account, err := s.accounts.ClaimDue(ctx, s.interval)
	if errors.Is(err, repo.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, syncErr := s.SyncFlagged(ctx, account.UserID, account.AccessToken)
	if syncErr != nil {
		s.logger.Warn("scheduled mail sync failed",
			zap.String("user_id", account.UserID),
			zap.Bool("unauthorized", errors.Is(syncErr, mail.ErrUnauthorized)),
			zap.Error(syncErr),
		)
	}
	if err := s.accounts.RecordSync(ctx, account.UserID, syncErr); err != nil {
		return true, err
	}
	return true, nil
}

func (s *MailSyncService) syncOne(ctx context.Context, userID string, m mail.Message) (bool, error) {
	_, err := s.ledger.FindSyncedEmail(ctx, userID, m.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrorNotFound) {
		return false, err
	}

	task, err := s.tasks.Create(ctx, emailTask(userID, m))
	if err != nil {
		return false, err
	}

	stored, err := s.ledger.SaveSyncedEmail(ctx, model.SyncedEmail{
		UserID:  userID,
		TaskID:  task.ID,
		EmailID: m.ID,
		Subject: m.Subject,
		From:    m.From,
	})
	if err != nil {
		return true, err
	}
	if !stored {
		// A concurrent sync recorded this email first and owns its task.
		if err := s.tasks.Delete(ctx, userID, task.ID); err != nil && !errors.Is(err, repo.ErrorNotFound) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func emailTask(userID string, m mail.Message) model.Task {
	title := strings.TrimSpace(m.Subject)
	if title == "" {
		title = noSubjectTitle
	}
	return model.Task{
		UserID:      userID,
		Title:       title,
		Description: m.Preview,
		Priority:    model.PriorityMedium,
		Category:    EmailCategory,
		Tags:        []string{},
		Subtasks:    []model.Subtask{},
	}
}
