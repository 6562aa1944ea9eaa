package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/auth"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type Services struct {
	Tasks *service.TaskService
	Notes *service.NoteService
	Links *service.LinkService
	Board *service.BoardService
	Mail  *service.MailSyncService

	// InboundSigningKey verifies forwarded emails. Empty disables the check.
	InboundSigningKey string
}

func NewRouter(svc Services, authn *auth.Authenticator, logger *zap.Logger) http.Handler {
	tasks := NewTaskHandler(svc.Tasks, svc.Links, logger)
	notes := NewNoteHandler(svc.Notes, svc.Links, logger)
	links := NewLinkHandler(svc.Links, logger)
	board := NewBoardHandler(svc.Board, logger)
	mailh := NewMailHandler(svc.Mail, logger)
	inbound := NewInboundMailHandler(svc.Notes, svc.InboundSigningKey, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/mail/webhook", mailh.Webhook)
	r.Post("/api/mail/inbound", inbound.Receive)

	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Post("/", tasks.Create)
			r.Get("/", tasks.List)
			r.Post("/structured", tasks.CreateStructured)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.Get)
				r.Patch("/", tasks.Update)
				r.Delete("/", tasks.Delete)
				r.Post("/toggle", tasks.Toggle)
				r.Get("/notes", tasks.LinkedNotes)
			})
		})
		r.Post("/api/subtasks/{id}/toggle", tasks.ToggleSubtask)

		r.Route("/api/notes", func(r chi.Router) {
			r.Post("/", notes.Create)
			r.Get("/", notes.List)
			r.Post("/structured", notes.CreateStructured)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", notes.Get)
				r.Patch("/", notes.Update)
				r.Delete("/", notes.Delete)
				r.Post("/append", notes.Append)
				r.Get("/tasks", notes.LinkedTasks)
			})
		})

		r.Post("/api/links", links.Create)
		r.Delete("/api/links", links.Delete)

		r.Route("/api/board", func(r chi.Router) {
			r.Get("/tasks", board.Tasks)
			r.Get("/tasks/tags", board.Tags)
			r.Get("/tasks/lists", board.Lists)
			r.Get("/tasks/view", board.View)
			r.Put("/tasks/view", board.UpdateView)
			r.Get("/{ns}/categories", board.Categories)
			r.Post("/{ns}/categories/{label}/{direction}", board.MoveCategory)
			r.Get("/{ns}/groups", board.Groups)
		})
		r.Get("/api/dashboard", board.Dashboard)

		r.Put("/api/mail/account", mailh.RegisterAccount)
		r.Post("/api/mail/sync", mailh.Sync)
	})

	return r
}
