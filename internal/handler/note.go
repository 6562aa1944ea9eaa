package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type NoteHandler struct {
	service *service.NoteService
	links   *service.LinkService
	logger  *zap.Logger
}

func NewNoteHandler(srv *service.NoteService, links *service.LinkService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{service: srv, links: links, logger: logger}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.Note
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	note, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.Created(w, r, "/api/notes/"+note.ID, note)
}

func (h *NoteHandler) CreateStructured(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Notes []model.StructuredNote `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	notes, err := h.service.CreateStructured(r.Context(), userID, req.Notes)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.Created(w, r, "", notes)
}

// List accepts q (title or content search) and category.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := model.NoteFilter{Query: r.URL.Query().Get("q")}
	if category := r.URL.Query().Get("category"); category != "" && category != organizer.AllCategory {
		filter.Category = &category
	}

	notes, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req model.NotePatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	note, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w)
}

// Append adds extracted image text to the note body.
func (h *NoteHandler) Append(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	note, err := h.service.AppendExtractedText(r.Context(), userID, id, req.Text)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) LinkedTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	tasks, err := h.links.LinkedTasks(r.Context(), userID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}
