package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/repo"
)

type NoteService struct {
	repo repo.NoteRepository
}

func NewNoteService(repo repo.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) Create(ctx context.Context, userID string, n model.Note) (model.Note, error) {
	n = prepareNote(n)
	n.UserID = userID
	if err := validateNote(n); err != nil {
		return n, err
	}
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return created, err
	}
	return normalizeNote(created), nil
}

// CreateStructured stores notes produced by the text structuring collaborator.
func (s *NoteService) CreateStructured(ctx context.Context, userID string, items []model.StructuredNote) ([]model.Note, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no notes", ErrValidation)
	}
	notes := make([]model.Note, 0, len(items))
	for i, item := range items {
		n := prepareNote(model.Note{Title: item.Title, Content: item.Content, Category: organizer.DefaultCategory})
		if err := validateNote(n); err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		notes = append(notes, n)
	}

	created := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		c, err := s.Create(ctx, userID, n)
		if err != nil {
			return created, err
		}
		created = append(created, c)
	}
	return created, nil
}

var (
	notesAddress = regexp.MustCompile(`notes-([A-Za-z0-9_-]+)@`)
	plainAddress = regexp.MustCompile(`([A-Za-z0-9_-]+)@`)
)

// recipientUser extracts the user id from a notes-{id}@ or {id}@ address.
func recipientUser(recipient string) string {
	if m := notesAddress.FindStringSubmatch(recipient); m != nil {
		return m[1]
	}
	if m := plainAddress.FindStringSubmatch(recipient); m != nil {
		return m[1]
	}
	return ""
}

// CreateFromEmail stores a forwarded email as a note in the Email category of the user named by
// the recipient address. The plain text body is preferred over the HTML one.
func (s *NoteService) CreateFromEmail(ctx context.Context, e model.InboundEmail) (model.Note, error) {
	userID := recipientUser(e.Recipient)
	if userID == "" {
		return model.Note{}, fmt.Errorf("%w: no user in recipient %q", ErrValidation, e.Recipient)
	}

	title := strings.TrimSpace(e.Subject)
	if title == "" {
		title = noSubjectTitle
	}
	content := strings.TrimSpace(e.BodyPlain)
	if content == "" {
		content = strings.TrimSpace(e.BodyHTML)
	}
	return s.Create(ctx, userID, model.Note{Title: title, Content: content, Category: EmailCategory})
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (model.Note, error) {
	n, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return n, err
	}
	return normalizeNote(n), nil
}

func (s *NoteService) List(ctx context.Context, userID string, filter model.NoteFilter) ([]model.Note, error) {
	notes, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return organizer.NormalizeNotes(notes), nil
}

func (s *NoteService) Update(ctx context.Context, userID, id string, patch model.NotePatch) (model.Note, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return current, err
	}
	n := prepareNote(patch.Apply(current))
	if err := validateNote(n); err != nil {
		return n, err
	}
	updated, err := s.repo.Update(ctx, n)
	if err != nil {
		return updated, err
	}
	return normalizeNote(updated), nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// AppendExtractedText adds text recognised in an image to the end of a note.
func (s *NoteService) AppendExtractedText(ctx context.Context, userID, id, text string) (model.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Note{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	n, err := s.repo.AppendContent(ctx, userID, id, text)
	if err != nil {
		return n, err
	}
	return normalizeNote(n), nil
}

func normalizeNote(n model.Note) model.Note {
	return organizer.NormalizeNotes([]model.Note{n})[0]
}

func prepareNote(n model.Note) model.Note {
	n.Title = strings.TrimSpace(n.Title)
	n.Category = strings.TrimSpace(n.Category)
	if n.Category == organizer.AllCategory {
		n.Category = organizer.DefaultCategory
	}
	return n
}

func validateNote(n model.Note) error {
	if n.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}
