package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
)

// PublicHandler serves the lineup read model without authentication.
type PublicHandler struct {
	Lineup *lineup.Service
	Logger *zap.Logger
}

func NewPublicHandler(svc *lineup.Service, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{Lineup: svc, Logger: logger}
}

// GetLineup handles GET /v1/shows/:id/lineup.
func (h *PublicHandler) GetLineup(c echo.Context) error {
	state, err := h.Lineup.GetLineupState(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, state)
}
