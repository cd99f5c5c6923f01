package task

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/validation"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

const (
	msgInvalidID = "Invalid task ID"
	msgNotFound  = "Task not found"
	msgDeleted   = "Task deleted successfully"
)

// Handler exposes the /api/tasks endpoints.
type Handler struct {
	svc            *TaskService
	logger         *zap.SugaredLogger
	defaultCreator int64
}

// NewHandler constructs a Handler. defaultCreator is used when a create
// request does not name its creator.
func NewHandler(svc *TaskService, logger *zap.SugaredLogger, defaultCreator int64) *Handler {
	return &Handler{svc: svc, logger: logger, defaultCreator: defaultCreator}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, p, errs := validation.TaskFilter(r.URL.Query(), validation.Limits{MaxLimit: h.svc.Defaults().MaxLimit})
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	res, err := h.svc.List(r.Context(), f, p)
	if err != nil {
		h.fail(w, r, "list tasks", err)
		return
	}
	utilities.WritePage(w, res.Items, utilities.Pagination{Total: res.Total, Limit: res.Page.Limit, Offset: res.Page.Offset})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get task", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := validation.DecodeBody(r.Body)
	if err != nil {
		h.logger.Debugw("invalid task payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, validation.MsgInvalidBody)
		return
	}
	in, errs := validation.TaskCreate(body)
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	if in.CreatorID == 0 {
		in.CreatorID = h.defaultCreator
	}
	t, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create task", err)
		return
	}
	utilities.WriteData(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	body, err := validation.DecodeBody(r.Body)
	if err != nil {
		h.logger.Debugw("invalid task payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, validation.MsgInvalidBody)
		return
	}
	patch, errs := validation.TaskPatch(body)
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	t, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, "update task", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, "delete task", err)
		return
	}
	if !deleted {
		utilities.WriteError(w, http.StatusNotFound, msgNotFound)
		return
	}
	utilities.WriteData(w, http.StatusOK, map[string]string{"message": msgDeleted})
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	body, err := validation.DecodeBody(r.Body)
	if err != nil {
		h.logger.Debugw("invalid assign payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, validation.MsgInvalidBody)
		return
	}
	assignee, errs := validation.Assign(body)
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	t, err := h.svc.Assign(r.Context(), id, assignee)
	if err != nil {
		h.fail(w, r, "assign task", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, t)
}

// fail maps service errors onto status codes; anything unrecognised is
// logged and reported as an internal error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utilities.WriteError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ErrAssigneeNotFound):
		utilities.WriteError(w, http.StatusNotFound, "Assignee not found")
	case errors.Is(err, ErrCreatorNotFound):
		utilities.WriteError(w, http.StatusNotFound, "Creator not found")
	case errors.Is(err, ErrInvalidStatus):
		utilities.WriteValidation(w, []utilities.FieldError{{Field: "status", Message: "Invalid status"}})
	case errors.Is(err, ErrInvalidPriority):
		utilities.WriteValidation(w, []utilities.FieldError{{Field: "priority", Message: "Invalid priority"}})
	case errors.Is(err, ErrTitleRequired):
		utilities.WriteValidation(w, []utilities.FieldError{{Field: "title", Message: "Title is required"}})
	case errors.Is(err, ErrCreatorRequired):
		utilities.WriteValidation(w, []utilities.FieldError{{Field: "creator_id", Message: "creator_id is required"}})
	case errors.Is(err, database.ErrReference):
		utilities.WriteError(w, http.StatusConflict, utilities.MsgReferenceGone)
	default:
		h.logger.Errorw(op+" failed", "err", err, "request_id", r.Header.Get(utilities.RequestIDHeader))
		utilities.WriteError(w, http.StatusInternalServerError, utilities.MsgInternal)
	}
}
