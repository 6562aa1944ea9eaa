package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/auth"
	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
	"github.com/BuzzLyutic/planner-api/internal/repo"
	"github.com/BuzzLyutic/planner-api/internal/service"
)

// memStore is an in-memory stand-in for every repository interface.
type memStore struct {
	mu       sync.Mutex
	tasks    map[string]model.Task
	notes    map[string]model.Note
	links    []model.Link
	keys     map[string]string
	ledger   map[string]model.SyncedEmail
	accounts map[string]model.MailAccount
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    make(map[string]model.Task),
		notes:    make(map[string]model.Note),
		keys:     make(map[string]string),
		ledger:   make(map[string]model.SyncedEmail),
		accounts: make(map[string]model.MailAccount),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memTasks struct{ *memStore }

func (m memTasks) Create(_ context.Context, t model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.Version = 1
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	subtasks := make([]model.Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		st.ID = uuid.NewString()
		st.TaskID = t.ID
		st.Position = i
		subtasks[i] = st
	}
	t.Subtasks = subtasks
	m.tasks[t.ID] = t
	return t, nil
}

func (m memTasks) Get(_ context.Context, userID, id string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return model.Task{}, repo.ErrorNotFound
	}
	return t, nil
}

func (m memTasks) List(_ context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if filter.ListName != nil && t.ListName != *filter.ListName {
			continue
		}
		f := organizer.Filters{Tags: filter.Tags}
		if filter.Category != nil {
			f.Category = *filter.Category
		}
		if !f.Match(t) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m memTasks) Update(_ context.Context, t model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return t, repo.ErrorNotFound
	}
	if cur.Version != t.Version {
		return t, repo.ErrorConflict
	}
	t.Version++
	t.Subtasks = cur.Subtasks
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = m.tick()
	m.tasks[t.ID] = t
	return t, nil
}

func (m memTasks) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return repo.ErrorNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m memTasks) SetCompleted(_ context.Context, userID, id string, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return repo.ErrorNotFound
	}
	t.Completed = completed
	m.tasks[id] = t
	return nil
}

func (m memTasks) SetSubtaskCompleted(_ context.Context, userID, subtaskID string, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = completed
				m.tasks[id] = t
				return nil
			}
		}
	}
	return repo.ErrorNotFound
}

func (m memTasks) SaveIdempotencyKey(_ context.Context, userID, key, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[userID+"/"+key]; !ok {
		m.keys[userID+"/"+key] = resourceID
	}
	return nil
}

func (m memTasks) GetIdempotencyKey(_ context.Context, userID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.keys[userID+"/"+key]
	if !ok {
		return "", repo.ErrorNotFound
	}
	return id, nil
}

type memNotes struct{ *memStore }

func (m memNotes) Create(_ context.Context, n model.Note) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = m.tick()
	n.UpdatedAt = n.CreatedAt
	m.notes[n.ID] = n
	return n, nil
}

func (m memNotes) Get(_ context.Context, userID, id string) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return model.Note{}, repo.ErrorNotFound
	}
	return n, nil
}

func (m memNotes) List(_ context.Context, userID string, _ model.NoteFilter) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Note{}
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m memNotes) Update(_ context.Context, n model.Note) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.notes[n.ID]
	if !ok || cur.UserID != n.UserID {
		return n, repo.ErrorNotFound
	}
	n.CreatedAt = cur.CreatedAt
	n.UpdatedAt = m.tick()
	m.notes[n.ID] = n
	return n, nil
}

func (m memNotes) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return repo.ErrorNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m memNotes) AppendContent(_ context.Context, userID, id, text string) (model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return model.Note{}, repo.ErrorNotFound
	}
	if n.Content == "" {
		n.Content = text
	} else {
		n.Content += "\n\n" + text
	}
	m.notes[id] = n
	return n, nil
}

type memLinks struct{ *memStore }

func (m memLinks) List(_ context.Context, userID string) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Link{}
	for _, l := range m.links {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m memLinks) Create(_ context.Context, l model.Link) (model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, okT := m.tasks[l.TaskID]
	n, okN := m.notes[l.NoteID]
	if !okT || !okN || t.UserID != l.UserID || n.UserID != l.UserID {
		return l, repo.ErrorNotFound
	}
	for _, x := range m.links {
		if x.TaskID == l.TaskID && x.NoteID == l.NoteID {
			return l, repo.ErrorConflict
		}
	}
	l.ID = uuid.NewString()
	l.CreatedAt = m.tick()
	m.links = append(m.links, l)
	return l, nil
}

func (m memLinks) Delete(_ context.Context, userID, taskID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.links {
		if l.UserID == userID && l.TaskID == taskID && l.NoteID == noteID {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return nil
		}
	}
	return repo.ErrorNotFound
}

type memMail struct{ *memStore }

func (m memMail) FindSyncedEmail(_ context.Context, userID, emailID string) (model.SyncedEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.ledger[userID+"/"+emailID]
	if !ok {
		return e, repo.ErrorNotFound
	}
	return e, nil
}

func (m memMail) SaveSyncedEmail(_ context.Context, e model.SyncedEmail) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ledger[e.UserID+"/"+e.EmailID]; ok {
		return false, nil
	}
	m.ledger[e.UserID+"/"+e.EmailID] = e
	return true, nil
}

func (m memMail) Upsert(_ context.Context, a model.MailAccount) (model.MailAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.UserID] = a
	return a, nil
}

func (m memMail) FindBySubscription(_ context.Context, subscriptionID string) (model.MailAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.SubscriptionID != "" && a.SubscriptionID == subscriptionID {
			return a, nil
		}
	}
	return model.MailAccount{}, repo.ErrorNotFound
}

func (m memMail) ClaimDue(context.Context, time.Duration) (model.MailAccount, error) {
	return model.MailAccount{}, repo.ErrorNotFound
}

func (m memMail) RecordSync(context.Context, string, error) error { return nil }

type testEnv struct {
	store  *memStore
	svc    Services
	authn  *auth.Authenticator
	router http.Handler
}

func newTestEnv(t *testing.T, mailClient service.MailClient) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := newMemStore()
	tasks, notes, links, mails := memTasks{store}, memNotes{store}, memLinks{store}, memMail{store}
	logger := zap.NewNop()

	if mailClient == nil {
		mailClient = mail.NewClient("http://127.0.0.1:0", nil)
	}
	svc := Services{
		Tasks: service.NewTaskService(tasks),
		Notes: service.NewNoteService(notes),
		Links: service.NewLinkService(links, tasks, notes),
		Board: service.NewBoardService(tasks, notes, prefs.NewStore(rdb, logger)),
		Mail:  service.NewMailSyncService(mailClient, tasks, mails, mails, time.Minute, logger),
	}
	authn := auth.New("test-secret")
	return &testEnv{store: store, svc: svc, authn: authn, router: NewRouter(svc, authn, logger)}
}
