package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
)

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, userID, id string) (model.Task, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockTaskRepository) SetCompleted(ctx context.Context, userID, id string, completed bool) error {
	return m.Called(ctx, userID, id, completed).Error(0)
}

func (m *MockTaskRepository) SetSubtaskCompleted(ctx context.Context, userID, subtaskID string, completed bool) error {
	return m.Called(ctx, userID, subtaskID, completed).Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, userID, key, resourceID string) error {
	return m.Called(ctx, userID, key, resourceID).Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, userID, key string) (string, error) {
	args := m.Called(ctx, userID, key)
	return args.String(0), args.Error(1)
}

type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, n model.Note) (model.Note, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) Get(ctx context.Context, userID, id string) (model.Note, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, n model.Note) (model.Note, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *MockNoteRepository) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockNoteRepository) AppendContent(ctx context.Context, userID, id, text string) (model.Note, error) {
	args := m.Called(ctx, userID, id, text)
	return args.Get(0).(model.Note), args.Error(1)
}

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) List(ctx context.Context, userID string) ([]model.Link, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Link), args.Error(1)
}

func (m *MockLinkRepository) Create(ctx context.Context, l model.Link) (model.Link, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(model.Link), args.Error(1)
}

func (m *MockLinkRepository) Delete(ctx context.Context, userID, taskID, noteID string) error {
	return m.Called(ctx, userID, taskID, noteID).Error(0)
}

type MockMailRepository struct {
	mock.Mock
}

func (m *MockMailRepository) FindSyncedEmail(ctx context.Context, userID, emailID string) (model.SyncedEmail, error) {
	args := m.Called(ctx, userID, emailID)
	return args.Get(0).(model.SyncedEmail), args.Error(1)
}

func (m *MockMailRepository) SaveSyncedEmail(ctx context.Context, e model.SyncedEmail) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockMailRepository) Upsert(ctx context.Context, a model.MailAccount) (model.MailAccount, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(model.MailAccount), args.Error(1)
}

func (m *MockMailRepository) FindBySubscription(ctx context.Context, subscriptionID string) (model.MailAccount, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(model.MailAccount), args.Error(1)
}

func (m *MockMailRepository) ClaimDue(ctx context.Context, interval time.Duration) (model.MailAccount, error) {
	args := m.Called(ctx, interval)
	return args.Get(0).(model.MailAccount), args.Error(1)
}

func (m *MockMailRepository) RecordSync(ctx context.Context, userID string, syncErr error) error {
	return m.Called(ctx, userID, syncErr).Error(0)
}

type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) FlaggedMessages(ctx context.Context, token string) ([]mail.Message, error) {
	args := m.Called(ctx, token)
	return args.Get(0).([]mail.Message), args.Error(1)
}

func (m *MockMailClient) Message(ctx context.Context, token, id string) (mail.Message, error) {
	args := m.Called(ctx, token, id)
	return args.Get(0).(mail.Message), args.Error(1)
}

// memoryPrefs is an in-process PreferenceStore.
type memoryPrefs struct {
	orders map[prefs.Namespace][]string
	views  map[prefs.Namespace]organizer.ViewState
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{
		orders: make(map[prefs.Namespace][]string),
		views:  make(map[prefs.Namespace]organizer.ViewState),
	}
}

func (p *memoryPrefs) CategoryOrder(_ context.Context, _ string, ns prefs.Namespace) ([]string, error) {
	return p.orders[ns], nil
}

func (p *memoryPrefs) SaveCategoryOrder(_ context.Context, _ string, ns prefs.Namespace, order []string) error {
	p.orders[ns] = order
	return nil
}

func (p *memoryPrefs) ViewState(_ context.Context, _ string, ns prefs.Namespace) (organizer.ViewState, error) {
	if v, ok := p.views[ns]; ok {
		return v, nil
	}
	return organizer.DefaultViewState(), nil
}

func (p *memoryPrefs) SaveViewState(_ context.Context, _ string, ns prefs.Namespace, view organizer.ViewState) error {
	p.views[ns] = view
	return nil
}
