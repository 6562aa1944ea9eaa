package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-api/internal/mail"
	"github.com/BuzzLyutic/planner-api/internal/model"
	"github.com/BuzzLyutic/planner-api/internal/service"
	"github.com/BuzzLyutic/planner-api/pkg/respond"
)

const maxInboundMemory = 10 << 20

// InboundMailHandler turns emails forwarded by the inbound mail provider into notes.
type InboundMailHandler struct {
	notes      *service.NoteService
	signingKey string
	logger     *zap.Logger
}

// NewInboundMailHandler builds the handler. An empty signing key accepts unsigned posts.
func NewInboundMailHandler(notes *service.NoteService, signingKey string, logger *zap.Logger) *InboundMailHandler {
	return &InboundMailHandler{notes: notes, signingKey: signingKey, logger: logger}
}

func (h *InboundMailHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxInboundMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respond.Error(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	if h.signingKey != "" && !mail.VerifyInboundSignature(h.signingKey,
		r.PostFormValue("timestamp"), r.PostFormValue("token"), r.PostFormValue("signature")) {
		h.logger.Warn("inbound email with bad signature", zap.String("sender", r.PostFormValue("sender")))
		respond.Error(w, r, http.StatusUnauthorized, "invalid signature")
		return
	}

	note, err := h.notes.CreateFromEmail(r.Context(), model.InboundEmail{
		Sender:    r.PostFormValue("sender"),
		Recipient: r.PostFormValue("recipient"),
		Subject:   r.PostFormValue("subject"),
		BodyPlain: r.PostFormValue("body-plain"),
		BodyHTML:  r.PostFormValue("body-html"),
	})
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("email stored as note",
		zap.String("user_id", note.UserID),
		zap.String("note_id", note.ID),
	)
	respond.Created(w, r, "/api/notes/"+note.ID, note)
}
