package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

type MailHandler struct {
	service *service.MailSyncService
	logger  *zap.Logger
}

func NewMailHandler(srv *service.MailSyncService, logger *zap.Logger) *MailHandler {
	return &MailHandler{service: srv, logger: logger}
}

type accountRequest struct {
	AccessToken    string `json:"access_token"`
	SubscriptionID string `json:"subscription_id"`
	ClientState    string `json:"client_state"`
}

func (h *MailHandler) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	account, err := h.service.RegisterAccount(r.Context(), userID, req.AccessToken, req.SubscriptionID, req.ClientState)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, account)
}

// Sync runs a flagged-mail sync with the token in the body.
func (h *MailHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		respond.Error(w, r, http.StatusBadRequest, "access_token is required")
		return
	}

	res, err := h.service.SyncFlagged(r.Context(), userID, req.AccessToken)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, res)
}

// Webhook receives change notifications. A subscription handshake carries validationToken in the
// query string and must be echoed back as plain text.
func (h *MailHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("validationToken"); token != "" {
		respond.Text(w, r, http.StatusOK, token)
		return
	}

	var batch mail.NotificationBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	created := h.service.HandleNotifications(r.Context(), batch.Value)
	h.logger.Info("mail notifications handled",
		zap.Int("notifications", len(batch.Value)),
		zap.Int("created", created),
	)
	respond.JSON(w, r, http.StatusAccepted, map[string]int{"processed": created})
}
