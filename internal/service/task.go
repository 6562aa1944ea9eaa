package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create stores a new task. With a non-empty idempotency key a repeated request returns the task
// created the first time.
func (s *TaskService) Create(ctx context.Context, userID string, t model.Task, idempKey string) (model.Task, error) {
	t = prepareTask(t)
	t.UserID = userID
	if err := validateTask(t); err != nil {
		return t, err
	}

	if idempKey != "" {
		if existingID, err := s.repo.GetIdempotencyKey(ctx, userID, idempKey); err == nil {
			return s.Get(ctx, userID, existingID)
		}
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	if idempKey != "" {
		return s.claimKey(ctx, userID, idempKey, created)
	}
	return organizer.NormalizeTask(created), nil
}

// claimKey binds idempKey to created. The first stored binding wins: when a concurrent request got
// there first, created is removed and the winner is returned instead.
func (s *TaskService) claimKey(ctx context.Context, userID, idempKey string, created model.Task) (model.Task, error) {
	if err := s.repo.SaveIdempotencyKey(ctx, userID, idempKey, created.ID); err != nil {
		// A lost key only weakens retry protection; the task itself is stored.
		return organizer.NormalizeTask(created), nil
	}
	winner, err := s.repo.GetIdempotencyKey(ctx, userID, idempKey)
	if err != nil || winner == created.ID {
		return organizer.NormalizeTask(created), nil
	}
	if err := s.repo.Delete(ctx, userID, created.ID); err != nil && !errors.Is(err, repo.ErrorNotFound) {
		return created, err
	}
	return s.Get(ctx, userID, winner)
}

// CreateStructured stores tasks produced by the text structuring collaborator through the same path
// as manual entry. Unknown priorities become medium and unparsable due dates are dropped.
func (s *TaskService) CreateStructured(ctx context.Context, userID string, items []model.StructuredTask) ([]model.Task, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no tasks", ErrValidation)
	}

	tasks := make([]model.Task, 0, len(items))
	for i, item := range items {
		t := prepareTask(fromStructured(item))
		if err := validateTask(t); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}

	created := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		c, err := s.Create(ctx, userID, t, "")
		if err != nil {
			return created, err
		}
		created = append(created, c)
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (model.Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return t, err
	}
	return organizer.NormalizeTask(t), nil
}

func (s *TaskService) List(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return organizer.SearchTasks(organizer.Normalize(tasks), filter.Query), nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, patch model.TaskPatch) (model.Task, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return current, err
	}
	if patch.Version != current.Version {
		return current, repo.ErrorConflict
	}

	t := prepareTask(patch.Apply(current))
	if err := validateTask(t); err != nil {
		return t, err
	}

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return updated, err
	}
	return organizer.NormalizeTask(updated), nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// Toggle flips the completion flag of a task.
func (s *TaskService) Toggle(ctx context.Context, userID, id string) (model.Task, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return t, err
	}
	if err := s.repo.SetCompleted(ctx, userID, id, !t.Completed); err != nil {
		return t, err
	}
	return s.Get(ctx, userID, id)
}

func (s *TaskService) SetSubtaskCompleted(ctx context.Context, userID, subtaskID string, completed bool) error {
	return s.repo.SetSubtaskCompleted(ctx, userID, subtaskID, completed)
}

func fromStructured(item model.StructuredTask) model.Task {
	t := model.Task{
		Title:       item.Title,
		Description: item.Description,
		Priority:    model.Priority(strings.ToLower(strings.TrimSpace(item.Priority))),
		ListName:    strings.TrimSpace(item.List),
		Category:    organizer.DefaultCategory,
	}
	if !t.Priority.Valid() {
		t.Priority = model.PriorityMedium
	}
	if item.DueDate != "" {
		if d, err := model.ParseDate(item.DueDate); err == nil {
			t.DueDate = &d
		}
	}
	for _, title := range item.Subtasks {
		if strings.TrimSpace(title) != "" {
			t.Subtasks = append(t.Subtasks, model.Subtask{Title: title})
		}
	}
	return t
}

func prepareTask(t model.Task) model.Task {
	t.Title = strings.TrimSpace(t.Title)
	t.ListName = strings.TrimSpace(t.ListName)
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == organizer.AllCategory {
		t.Category = organizer.DefaultCategory
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.Tags = organizer.NormalizeTags(t.Tags)
	subtasks := make([]model.Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		st.Title = strings.TrimSpace(st.Title)
		subtasks[i] = st
	}
	t.Subtasks = subtasks
	return t
}

func validateTask(t model.Task) error {
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
	}
	for _, st := range t.Subtasks {
		if st.Title == "" {
			return fmt.Errorf("%w: subtask title is required", ErrValidation)
		}
	}
	return nil
}
