package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/auth"
	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
	"github.com/BuzzLyutic/planner-api/internal/repo"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, organizer.ErrLinkNotFound):
		respond.Error(w, r, http.StatusNotFound, "link not found")
	case errors.Is(err, prefs.ErrUnknownNamespace):
		respond.Error(w, r, http.StatusNotFound, "unknown board")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, organizer.ErrAlreadyLinked):
		respond.Error(w, r, http.StatusConflict, "already linked")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, mail.ErrUnauthorized):
		respond.Error(w, r, http.StatusBadGateway, "mail token rejected")
	default:
		logger.Error("internal error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

// currentUser returns the authenticated user id. Routes without the auth middleware get a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// idParam reads a UUID path parameter. Anything else is answered with 404.
func idParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return "", false
	}
	return id.String(), true
}
