package service

import (
	"context"
	"fmt"
	"time"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

const (
	GroupByCategory = "category"
	GroupByList     = "list"

	MoveUp   = "up"
	MoveDown = "down"
)

const (
	maxDashboardDays = 62
	topCategoryLimit = 5
	recentNotesLimit = 5
)

// PreferenceStore keeps per-user board state.
type PreferenceStore interface {
	CategoryOrder(ctx context.Context, userID string, ns prefs.Namespace) ([]string, error)
	SaveCategoryOrder(ctx context.Context, userID string, ns prefs.Namespace, order []string) error
	ViewState(ctx context.Context, userID string, ns prefs.Namespace) (organizer.ViewState, error)
	SaveViewState(ctx context.Context, userID string, ns prefs.Namespace, view organizer.ViewState) error
}

type Dashboard struct {
	Overview      organizer.OverviewStats   `json:"overview"`
	Days          []organizer.Day           `json:"days"`
	DueToday      []model.Task              `json:"due_today"`
	Upcoming      []model.Task              `json:"upcoming"`
	TopCategories []organizer.CategoryCount `json:"top_categories"`
	RecentNotes   []model.Note              `json:"recent_notes"`
}

// FilteredTasks is the task board as seen through the saved view state.
type FilteredTasks struct {
	View  organizer.ViewState `json:"view"`
	Tasks []model.Task        `json:"tasks"`
}

type BoardService struct {
	tasks repo.TaskRepository
	notes repo.NoteRepository
	prefs PreferenceStore
	now   func() time.Time
}

func NewBoardService(tasks repo.TaskRepository, notes repo.NoteRepository, prefs PreferenceStore) *BoardService {
	return &BoardService{tasks: tasks, notes: notes, prefs: prefs, now: time.Now}
}

// Categories returns the display order of the categories in use, sentinel first.
func (s *BoardService) Categories(ctx context.Context, userID string, ns prefs.Namespace) ([]string, error) {
	observed, err := s.observedCategories(ctx, userID, ns)
	if err != nil {
		return nil, err
	}
	saved, err := s.prefs.CategoryOrder(ctx, userID, ns)
	if err != nil {
		return nil, err
	}
	return organizer.ResolveOrder(observed, saved), nil
}

// MoveCategory shifts label one place up or down and saves the resulting order. Saved labels
// that are not in use right now stay in the saved order.
func (s *BoardService) MoveCategory(ctx context.Context, userID string, ns prefs.Namespace, label, direction string) ([]string, error) {
	observed, err := s.observedCategories(ctx, userID, ns)
	if err != nil {
		return nil, err
	}
	saved, err := s.prefs.CategoryOrder(ctx, userID, ns)
	if err != nil {
		return nil, err
	}
	current := organizer.ResolveOrder(observed, saved)

	var next []string
	switch direction {
	case MoveUp:
		next = organizer.MoveUp(label, current)
	case MoveDown:
		next = organizer.MoveDown(label, current)
	default:
		return nil, fmt.Errorf("%w: direction must be up or down", ErrValidation)
	}

	if err := s.prefs.SaveCategoryOrder(ctx, userID, ns, organizer.MergeStoredOrder(next, saved)); err != nil {
		return nil, err
	}
	return next, nil
}

// TaskGroups groups the tasks that pass the saved view by category or by list.
func (s *BoardService) TaskGroups(ctx context.Context, userID, by string) ([]organizer.Group[model.Task], error) {
	board, err := s.FilteredTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch by {
	case "", GroupByCategory:
		saved, err := s.prefs.CategoryOrder(ctx, userID, prefs.NamespaceTasks)
		if err != nil {
			return nil, err
		}
		return organizer.GroupBy(board.Tasks, organizer.TaskCategory, saved), nil
	case GroupByList:
		return organizer.GroupBy(board.Tasks, organizer.TaskList, nil), nil
	default:
		return nil, fmt.Errorf("%w: group by must be category or list", ErrValidation)
	}
}

func (s *BoardService) NoteGroups(ctx context.Context, userID string) ([]organizer.Group[model.Note], error) {
	notes, err := s.notes.List(ctx, userID, model.NoteFilter{})
	if err != nil {
		return nil, err
	}
	saved, err := s.prefs.CategoryOrder(ctx, userID, prefs.NamespaceNotes)
	if err != nil {
		return nil, err
	}
	return organizer.GroupBy(organizer.NormalizeNotes(notes), organizer.NoteCategory, saved), nil
}

// Lists returns the distinct task list names in first-seen order.
func (s *BoardService) Lists(ctx context.Context, userID string) ([]string, error) {
	tasks, err := s.allTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return organizer.DistinctLists(tasks), nil
}

func (s *BoardService) Tags(ctx context.Context, userID, category string) ([]string, error) {
	tasks, err := s.allTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = organizer.AllCategory
	}
	return organizer.TagsForCategory(tasks, category), nil
}

func (s *BoardService) View(ctx context.Context, userID string) (organizer.ViewState, error) {
	return s.prefs.ViewState(ctx, userID, prefs.NamespaceTasks)
}

// UpdateView applies one board action to the saved view and stores the result.
func (s *BoardService) UpdateView(ctx context.Context, userID string, u organizer.ViewUpdate) (organizer.ViewState, error) {
	if u.Completion != nil {
		c, ok := organizer.ParseCompletion(string(*u.Completion))
		if !ok {
			return organizer.ViewState{}, fmt.Errorf("%w: completion must be all, active or completed", ErrValidation)
		}
		u.Completion = &c
	}
	current, err := s.prefs.ViewState(ctx, userID, prefs.NamespaceTasks)
	if err != nil {
		return current, err
	}
	next := current.Apply(u)
	if err := s.prefs.SaveViewState(ctx, userID, prefs.NamespaceTasks, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *BoardService) FilteredTasks(ctx context.Context, userID string) (FilteredTasks, error) {
	view, err := s.prefs.ViewState(ctx, userID, prefs.NamespaceTasks)
	if err != nil {
		return FilteredTasks{}, err
	}
	tasks, err := s.allTasks(ctx, userID)
	if err != nil {
		return FilteredTasks{}, err
	}
	return FilteredTasks{View: view, Tasks: organizer.ApplyFilters(tasks, view.Filters())}, nil
}

// Dashboard summarises the user's tasks and notes over a calendar window of days starting today.
func (s *BoardService) Dashboard(ctx context.Context, userID string, days int) (Dashboard, error) {
	if days == 0 {
		days = organizer.CalendarDays
	}
	if days < 1 || days > maxDashboardDays {
		return Dashboard{}, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, maxDashboardDays)
	}

	tasks, err := s.allTasks(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	notes, err := s.notes.List(ctx, userID, model.NoteFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	notes = organizer.NormalizeNotes(notes)

	today := s.now()
	return Dashboard{
		Overview:      organizer.Overview(tasks, notes, today),
		Days:          organizer.BuildWindow(tasks, today, days),
		DueToday:      organizer.DueToday(tasks, today),
		Upcoming:      organizer.UpcomingDeadlines(tasks, today, organizer.UpcomingWindowDays, organizer.UpcomingLimit),
		TopCategories: organizer.TopCategories(tasks, topCategoryLimit),
		RecentNotes:   organizer.RecentNotes(notes, recentNotesLimit),
	}, nil
}

func (s *BoardService) allTasks(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx, userID, model.TaskFilter{})
	if err != nil {
		return nil, err
	}
	return organizer.Normalize(tasks), nil
}

func (s *BoardService) observedCategories(ctx context.Context, userID string, ns prefs.Namespace) ([]string, error) {
	switch ns {
	case prefs.NamespaceTasks:
		tasks, err := s.allTasks(ctx, userID)
		if err != nil {
			return nil, err
		}
		return organizer.DistinctCategories(tasks, organizer.TaskCategory), nil
	case prefs.NamespaceNotes:
		notes, err := s.notes.List(ctx, userID, model.NoteFilter{})
		if err != nil {
			return nil, err
		}
		return organizer.DistinctCategories(notes, organizer.NoteCategory), nil
	default:
		return nil, prefs.ErrUnknownNamespace
	}
}
