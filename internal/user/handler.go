package user

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/validation"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for user registration and lookup.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.internal(w, r, "list users", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, users)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validation.ID(r.PathValue("id"))
	if !ok {
		utilities.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utilities.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internal(w, r, "get user", err)
		return
	}
	utilities.WriteData(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := validation.DecodeBody(r.Body)
	if err != nil {
		h.logger.Debugw("invalid user payload", "err", err)
		utilities.WriteError(w, http.StatusBadRequest, validation.MsgInvalidBody)
		return
	}
	in, errs := validation.UserCreate(body)
	if !errs.Empty() {
		utilities.WriteValidation(w, errs)
		return
	}
	u, err := h.svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			utilities.WriteError(w, http.StatusConflict, "Username already exists")
		case errors.Is(err, ErrEmailTaken):
			utilities.WriteError(w, http.StatusConflict, "Email already exists")
		default:
			h.internal(w, r, "create user", err)
		}
		return
	}
	h.logger.Infow("user registered", "user_id", u.ID)
	utilities.WriteData(w, http.StatusCreated, u)
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Errorw(op+" failed", "err", err, "request_id", r.Header.Get(utilities.RequestIDHeader))
	utilities.WriteError(w, http.StatusInternalServerError, utilities.MsgInternal)
}
