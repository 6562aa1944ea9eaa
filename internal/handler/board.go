package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/organizer"
	"github.com/BuzzLyutic/planner-api/internal/prefs"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type BoardHandler struct {
	service *service.BoardService
	logger  *zap.Logger
}

func NewBoardHandler(srv *service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{service: srv, logger: logger}
}

func (h *BoardHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ns, err := prefs.ParseNamespace(chi.URLParam(r, "ns"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	order, err := h.service.Categories(r.Context(), userID, ns)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, order)
}

func (h *BoardHandler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ns, err := prefs.ParseNamespace(chi.URLParam(r, "ns"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	label, err := url.PathUnescape(chi.URLParam(r, "label"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid category label")
		return
	}

	order, err := h.service.MoveCategory(r.Context(), userID, ns, label, chi.URLParam(r, "direction"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, order)
}

// Groups returns task groups (by=category|list) or note groups (by category only).
func (h *BoardHandler) Groups(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ns, err := prefs.ParseNamespace(chi.URLParam(r, "ns"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	by := r.URL.Query().Get("by")

	if ns == prefs.NamespaceNotes {
		if by != "" && by != service.GroupByCategory {
			respond.Error(w, r, http.StatusBadRequest, "notes can only be grouped by category")
			return
		}
		groups, err := h.service.NoteGroups(r.Context(), userID)
		if err != nil {
			handleErrors(w, r, h.logger, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, groups)
		return
	}

	groups, err := h.service.TaskGroups(r.Context(), userID, by)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, groups)
}

func (h *BoardHandler) Tags(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tags, err := h.service.Tags(r.Context(), userID, r.URL.Query().Get("category"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tags)
}

func (h *BoardHandler) Lists(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	lists, err := h.service.Lists(r.Context(), userID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	if lists == nil {
		lists = []string{}
	}
	respond.JSON(w, r, http.StatusOK, lists)
}

func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), userID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, view)
}

func (h *BoardHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req organizer.ViewUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	view, err := h.service.UpdateView(r.Context(), userID, req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, view)
}

func (h *BoardHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	board, err := h.service.FilteredTasks(r.Context(), userID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, board)
}

func (h *BoardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "days must be a number")
			return
		}
		days = n
	}

	d, err := h.service.Dashboard(r.Context(), userID, days)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, d)
}
