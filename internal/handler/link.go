package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type LinkHandler struct {
	service *service.LinkService
	logger  *zap.Logger
}

func NewLinkHandler(srv *service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{service: srv, logger: logger}
}

type linkRequest struct {
	TaskID string `json:"task_id"`
	NoteID string `json:"note_id"`
}

func (req linkRequest) valid() bool {
	_, errTask := uuid.Parse(req.TaskID)
	_, errNote := uuid.Parse(req.NoteID)
	return errTask == nil && errNote == nil
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if !req.valid() {
		respond.Error(w, r, http.StatusBadRequest, "task_id and note_id must be ids")
		return
	}

	link, err := h.service.Link(r.Context(), userID, req.TaskID, req.NoteID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.Created(w, r, "", link)
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req := linkRequest{TaskID: r.URL.Query().Get("task_id"), NoteID: r.URL.Query().Get("note_id")}
	if !req.valid() {
		respond.Error(w, r, http.StatusBadRequest, "task_id and note_id must be ids")
		return
	}

	if err := h.service.Unlink(r.Context(), userID, req.TaskID, req.NoteID); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w)
}
