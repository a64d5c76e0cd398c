package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
	"github.com/iliyamo/live-show-lineup/internal/middleware"
)

// PerformerHandler lets finalists answer confirmation requests.  The
// acting user is always the token subject.
type PerformerHandler struct {
	Lineup *lineup.Service
	Logger *zap.Logger
}

func NewPerformerHandler(svc *lineup.Service, logger *zap.Logger) *PerformerHandler {
	if svc == nil {
		panic("nil lineup service passed to NewPerformerHandler")
	}
	return &PerformerHandler{Lineup: svc, Logger: logger}
}

// Confirm handles POST /v1/finalists/:id/confirm.
func (h *PerformerHandler) Confirm(c echo.Context) error {
	f, err := h.Lineup.ConfirmParticipation(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, f)
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Cancel handles POST /v1/finalists/:id/cancel.  The response carries
// the replacement scenario that ran, or null when none applied.
func (h *PerformerHandler) Cancel(c echo.Context) error {
	var req cancelRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return fail(c, h.Logger, err)
		}
	}
	res, err := h.Lineup.CancelParticipation(c.Request().Context(), c.Param("id"), middleware.UserID(c), req.Reason)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"resolution": res})
}
