package comment

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/validation"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

const msgTaskNotFound = "Task not found"

// Handler exposes /api/tasks/{id}/comments.
type Handler struct {
	svc    *CommentService
	logger *zap.SugaredLogger
}

func NewHandler(svc *CommentService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	taskID, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	exists, err := h.svc.TaskExists(r.Context(), taskID)
	if err != nil {
		h.fail(w, r, "list comments", err)
		return
	}
	if !exists {
		utilities.WriteError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	comments, err := h.svc.ListByTask(r.Context(), taskID)
	if err != nil {
		h.fail(w, r, "list comments", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, comments)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}
	body, err := validation.DecodeBody(r.Body)
	if err != nil {
		h.logger.Debugw("invalid comment payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, validation.MsgInvalidBody)
		return
	}
	in, errs := validation.CommentCreate(body)
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	c, err := h.svc.Create(r.Context(), taskID, in.UserID, in.Content)
	if err != nil {
		h.fail(w, r, "create comment", err)
		return
	}
	utilities.WriteData(w, http.StatusCreated, c)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrTaskNotFound):
		utilities.WriteError(w, http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, ErrUserNotFound):
		utilities.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, ErrContentRequired):
		utilities.WriteValidation(w, []utilities.FieldError{{Field: "content", Message: "Content is required"}})
	case errors.Is(err, database.ErrReference):
		utilities.WriteError(w, http.StatusConflict, utilities.MsgReferenceGone)
	default:
		h.logger.Errorw(op+" failed", "err", err, "request_id", r.Header.Get(utilities.RequestIDHeader))
		utilities.WriteError(w, http.StatusInternalServerError, utilities.MsgInternal)
	}
}
