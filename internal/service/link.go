package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

type LinkService struct {
	links repo.LinkRepository
	tasks repo.TaskRepository
	notes repo.NoteRepository
}

func NewLinkService(links repo.LinkRepository, tasks repo.TaskRepository, notes repo.NoteRepository) *LinkService {
	return &LinkService{links: links, tasks: tasks, notes: notes}
}

// Link connects a task and a note. The current edges are checked first; the store's uniqueness
// constraint is the final word.
func (s *LinkService) Link(ctx context.Context, userID, taskID, noteID string) (model.Link, error) {
	if taskID == "" || noteID == "" {
		return model.Link{}, fmt.Errorf("%w: task_id and note_id are required", ErrValidation)
	}
	edges, err := s.edges(ctx, userID)
	if err != nil {
		return model.Link{}, err
	}
	if _, err := organizer.Link(taskID, noteID, edges); err != nil {
		return model.Link{}, err
	}

	l, err := s.links.Create(ctx, model.Link{UserID: userID, TaskID: taskID, NoteID: noteID})
	if errors.Is(err, repo.ErrorConflict) {
		return l, organizer.ErrAlreadyLinked
	}
	return l, err
}

func (s *LinkService) Unlink(ctx context.Context, userID, taskID, noteID string) error {
	edges, err := s.edges(ctx, userID)
	if err != nil {
		return err
	}
	if err := organizer.Unlink(taskID, noteID, edges); err != nil {
		return err
	}

	err = s.links.Delete(ctx, userID, taskID, noteID)
	if errors.Is(err, repo.ErrorNotFound) {
		return organizer.ErrLinkNotFound
	}
	return err
}

// LinkedNotes returns the notes linked to a task, skipping links whose note is gone.
func (s *LinkService) LinkedNotes(ctx context.Context, userID, taskID string) ([]model.Note, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	edges, err := s.edges(ctx, userID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, userID, model.NoteFilter{})
	if err != nil {
		return nil, err
	}
	notes = organizer.NormalizeNotes(notes)
	return organizer.LinkedItemsFor(taskID, organizer.SideTask, edges, organizer.Index(notes, organizer.NoteID)), nil
}

// LinkedTasks returns the tasks linked to a note, skipping links whose task is gone.
func (s *LinkService) LinkedTasks(ctx context.Context, userID, noteID string) ([]model.Task, error) {
	if _, err := s.notes.Get(ctx, userID, noteID); err != nil {
		return nil, err
	}
	edges, err := s.edges(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, userID, model.TaskFilter{})
	if err != nil {
		return nil, err
	}
	tasks = organizer.Normalize(tasks)
	return organizer.LinkedItemsFor(noteID, organizer.SideNote, edges, organizer.Index(tasks, organizer.TaskID)), nil
}

func (s *LinkService) edges(ctx context.Context, userID string) ([]organizer.Edge, error) {
	links, err := s.links.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return organizer.EdgesOf(links), nil
}
