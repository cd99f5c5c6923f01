package stats

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

// Handler exposes GET /api/stats.
type Handler struct {
	svc    *StatsService
	logger *zap.SugaredLogger
}

func NewHandler(svc *StatsService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Get(r.Context())
	if err != nil {
		h.logger.Errorw("get stats failed", "err", err, "request_id", r.Header.Get(utilities.RequestIDHeader))
		utilities.WriteError(w, http.StatusInternalServerError, utilities.MsgInternal)
		return
	}
	utilities.WriteData(w, http.StatusOK, report)
}
