package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	links   *service.LinkService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, links *service.LinkService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		links:   links,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), userID, req, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.Created(w, r, "/api/tasks/"+task.ID, task)
}

func (h *TaskHandler) CreateStructured(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Tasks []model.StructuredTask `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	tasks, err := h.service.CreateStructured(r.Context(), userID, req.Tasks)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.Created(w, r, "", tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// List accepts list, category, tags (comma separated) and status (all|active|completed).
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filter model.TaskFilter
	if list := q.Get("list"); list != "" {
		filter.ListName = &list
	}
	if category := q.Get("category"); category != "" && category != organizer.AllCategory {
		filter.Category = &category
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = organizer.NormalizeTags(strings.Split(tags, ","))
	}
	filter.Query = q.Get("q")
	completion, valid := organizer.ParseCompletion(q.Get("status"))
	if !valid {
		respond.Error(w, r, http.StatusBadRequest, "status must be all, active or completed")
		return
	}
	if completion != organizer.CompletionAll {
		done := completion == organizer.CompletionCompleted
		filter.Completed = &done
	}

	tasks, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	task, err := h.service.Toggle(r.Context(), userID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// ToggleSubtask sets a subtask's completion to the value in the body.
func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Completed == nil {
		respond.Error(w, r, http.StatusBadRequest, "completed is required")
		return
	}

	if err := h.service.SetSubtaskCompleted(r.Context(), userID, id, *req.Completed); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w)
}

func (h *TaskHandler) LinkedNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	notes, err := h.links.LinkedNotes(r.Context(), userID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, notes)
}
