package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

type mailFixture struct {
	client *MockMailClient
	tasks  *MockTaskRepository
	store  *MockMailRepository
	svc    *MailSyncService
}

func newMailFixture() mailFixture {
	f := mailFixture{
		client: new(MockMailClient),
		tasks:  new(MockTaskRepository),
		store:  new(MockMailRepository),
	}
	f.svc = NewMailSyncService(f.client, f.tasks, f.store, f.store, time.Minute, zap.NewNop())
	return f
}

func TestMailSyncService_SyncFlaggedIsIdempotent(t *testing.T) {
	f := newMailFixture()
	ctx := context.Background()
	msg := mail.Message{ID: "m1", Subject: "Invoice", Preview: "Please pay", From: "billing@acme.test", Flagged: true}

	f.client.On("FlaggedMessages", mock.Anything, "tok").Return([]mail.Message{msg}, nil)
	f.store.On("FindSyncedEmail", mock.Anything, "u1", "m1").Return(model.SyncedEmail{}, repo.ErrorNotFound).Once()
	f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
		return t.Title == "Invoice" && t.Category == "Email" && t.Description == "Please pay" &&
			t.Priority == model.PriorityMedium && t.UserID == "u1"
	})).Return(model.Task{ID: "t1"}, nil).Once()
	f.store.On("SaveSyncedEmail", mock.Anything, model.SyncedEmail{
		UserID: "u1", TaskID: "t1", EmailID: "m1", Subject: "Invoice", From: "billing@acme.test",
	}).Return(true, nil).Once()
	f.store.On("FindSyncedEmail", mock.Anything, "u1", "m1").Return(model.SyncedEmail{TaskID: "t1"}, nil)

	first, err := f.svc.SyncFlagged(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 1}, first)

	second, err := f.svc.SyncFlagged(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Skipped: 1}, second)

	f.tasks.AssertNumberOfCalls(t, "Create", 1)
	f.store.AssertExpectations(t)
}

func TestMailSyncService_SyncFlaggedContinuesAfterFailure(t *testing.T) {
	f := newMailFixture()
	f.client.On("FlaggedMessages", mock.Anything, "tok").Return([]mail.Message{
		{ID: "bad", Subject: "x", Flagged: true},
		{ID: "good", Flagged: true},
	}, nil)
	f.store.On("FindSyncedEmail", mock.Anything, "u1", "bad").Return(model.SyncedEmail{}, errors.New("db down"))
	f.store.On("FindSyncedEmail", mock.Anything, "u1", "good").Return(model.SyncedEmail{}, repo.ErrorNotFound)
	f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(t model.Task) bool {
		return t.Title == "(no subject)"
	})).Return(model.Task{ID: "t2"}, nil)
	f.store.On("SaveSyncedEmail", mock.Anything, mock.Anything).Return(true, nil)

	res, err := f.svc.SyncFlagged(context.Background(), "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 1, Failed: 1}, res)
}

func TestMailSyncService_SyncFlaggedClientError(t *testing.T) {
	f := newMailFixture()
	f.client.On("FlaggedMessages", mock.Anything, "expired").Return([]mail.Message(nil), &mail.APIError{Status: 401})

	_, err := f.svc.SyncFlagged(context.Background(), "u1", "expired")
	assert.ErrorIs(t, err, mail.ErrUnauthorized)
}

func TestMailSyncService_SyncMessageSkipsUnflagged(t *testing.T) {
	f := newMailFixture()
	f.client.On("Message", mock.Anything, "tok", "m1").Return(mail.Message{ID: "m1"}, nil)

	created, err := f.svc.SyncMessage(context.Background(), "u1", "tok", "m1")
	require.NoError(t, err)
	assert.False(t, created)
	f.store.AssertNotCalled(t, "FindSyncedEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailSyncService_HandleNotifications(t *testing.T) {
	f := newMailFixture()
	known := mail.Notification{SubscriptionID: "sub-1", ClientState: "secret"}
	known.ResourceData.ID = "m1"
	forged := mail.Notification{SubscriptionID: "sub-1", ClientState: "guess"}
	forged.ResourceData.ID = "m9"
	unknown := mail.Notification{SubscriptionID: "sub-x"}

	f.store.On("FindBySubscription", mock.Anything, "sub-1").
		Return(model.MailAccount{UserID: "u1", AccessToken: "tok", ClientState: "secret"}, nil)
	f.store.On("FindBySubscription", mock.Anything, "sub-x").Return(model.MailAccount{}, repo.ErrorNotFound)
	f.client.On("Message", mock.Anything, "tok", "m1").Return(mail.Message{ID: "m1", Subject: "Hi", Flagged: true}, nil)
	f.store.On("FindSyncedEmail", mock.Anything, "u1", "m1").Return(model.SyncedEmail{}, repo.ErrorNotFound)
	f.tasks.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t1"}, nil)
	f.store.On("SaveSyncedEmail", mock.Anything, mock.Anything).Return(true, nil)

	assert.Equal(t, 1, f.svc.HandleNotifications(context.Background(), []mail.Notification{known, forged, unknown}))
	f.client.AssertNotCalled(t, "Message", mock.Anything, "tok", "m9")
}

func TestMailSyncService_SyncDue(t *testing.T) {
	t.Run("nothing due", func(t *testing.T) {
		f := newMailFixture()
		f.store.On("ClaimDue", mock.Anything, time.Minute).Return(model.MailAccount{}, repo.ErrorNotFound)

		ran, err := f.svc.SyncDue(context.Background())
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("records failure", func(t *testing.T) {
		f := newMailFixture()
		apiErr := &mail.APIError{Status: 401, Body: "expired"}
		f.store.On("ClaimDue", mock.Anything, time.Minute).Return(model.MailAccount{UserID: "u1", AccessToken: "tok"}, nil)
		f.client.On("FlaggedMessages", mock.Anything, "tok").Return([]mail.Message(nil), apiErr)
		f.store.On("RecordSync", mock.Anything, "u1", apiErr).Return(nil)

		ran, err := f.svc.SyncDue(context.Background())
		require.NoError(t, err)
		assert.True(t, ran)
		f.store.AssertExpectations(t)
	})

	t.Run("records success", func(t *testing.T) {
		f := newMailFixture()
		f.store.On("ClaimDue", mock.Anything, time.Minute).Return(model.MailAccount{UserID: "u1", AccessToken: "tok"}, nil)
		f.client.On("FlaggedMessages", mock.Anything, "tok").Return([]mail.Message{}, nil)
		f.store.On("RecordSync", mock.Anything, "u1", nil).Return(nil)

		ran, err := f.svc.SyncDue(context.Background())
		require.NoError(t, err)
		assert.True(t, ran)
		f.store.AssertExpectations(t)
	})
}

func TestMailSyncService_RegisterAccount(t *testing.T) {
	f := newMailFixture()
	f.store.On("Upsert", mock.Anything, model.MailAccount{UserID: "u1", AccessToken: "tok", SubscriptionID: "sub-1", ClientState: "secret"}).
		Return(model.MailAccount{UserID: "u1", SubscriptionID: "sub-1"}, nil)

	a, err := f.svc.RegisterAccount(context.Background(), "u1", " tok ", "sub-1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", a.SubscriptionID)

	_, err = f.svc.RegisterAccount(context.Background(), "u1", "", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.RegisterAccount(context.Background(), "u1", "tok", "sub-1", "")
	assert.ErrorIs(t, err, ErrValidation, "a subscription without client state cannot be verified")
	f.store.AssertNumberOfCalls(t, "Upsert", 1)
}

// racingLedger lets both syncs miss the lookup before either records the email,
// then keeps only the first record like ON CONFLICT DO NOTHING.
type racingLedger struct {
	lookups sync.WaitGroup
	mu      sync.Mutex
	rows    map[string]model.SyncedEmail
}

func (l *racingLedger) FindSyncedEmail(_ context.Context, userID, emailID string) (model.SyncedEmail, error) {
	l.mu.Lock()
	_, ok := l.rows[userID+"/"+emailID]
	l.mu.Unlock()
	l.lookups.Done()
	l.lookups.Wait()
	if ok {
		return model.SyncedEmail{}, nil
	}
	return model.SyncedEmail{}, repo.ErrorNotFound
}

func (l *racingLedger) SaveSyncedEmail(_ context.Context, e model.SyncedEmail) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := e.UserID + "/" + e.EmailID
	if _, ok := l.rows[key]; ok {
		return false, nil
	}
	l.rows[key] = e
	return true, nil
}

func TestMailSyncService_ConcurrentSyncKeepsOneTask(t *testing.T) {
	client := new(MockMailClient)
	tasks := new(MockTaskRepository)
	ledger := &racingLedger{rows: map[string]model.SyncedEmail{}}
	ledger.lookups.Add(2)
	svc := NewMailSyncService(client, tasks, ledger, new(MockMailRepository), time.Minute, zap.NewNop())

	client.On("Message", mock.Anything, "tok", "m1").Return(mail.Message{ID: "m1", Subject: "Invoice", Flagged: true}, nil)
	tasks.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t1"}, nil).Once()
	tasks.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: "t2"}, nil).Once()
	tasks.On("Delete", mock.Anything, "u1", mock.Anything).Return(nil)

	var wg sync.WaitGroup
	created := make([]bool, 2)
	errs := make([]error, 2)
	for i := range created {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			created[idx], errs[idx] = svc.SyncMessage(context.Background(), "u1", "tok", "m1")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, created[0], created[1], "exactly one sync should report a new task")

	tasks.AssertNumberOfCalls(t, "Create", 2)
	tasks.AssertNumberOfCalls(t, "Delete", 1)
	kept := ledger.rows["u1/m1"].TaskID
	require.NotEmpty(t, kept)
	for _, call := range tasks.Calls {
		if call.Method == "Delete" {
			assert.NotEqual(t, kept, call.Arguments.String(2), "the recorded task must survive")
		}
	}
}
