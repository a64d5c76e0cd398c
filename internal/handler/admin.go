package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
	"github.com/iliyamo/live-show-lineup/internal/middleware"
	"github.com/iliyamo/live-show-lineup/internal/model"
)

// AdminHandler exposes show scheduling, roster and lock operations to
// production staff.
type AdminHandler struct {
	Lineup *lineup.Service
	Logger *zap.Logger
}

// NewAdminHandler panics on a nil service.
func NewAdminHandler(svc *lineup.Service, logger *zap.Logger) *AdminHandler {
	if svc == nil {
		panic("nil lineup service passed to NewAdminHandler")
	}
	return &AdminHandler{Lineup: svc, Logger: logger}
}

type createShowRequest struct {
	WeekNumber       int       `json:"weekNumber" validate:"gte=1,lte=53"`
	Title            string    `json:"title" validate:"required,max=255"`
	Description      *string   `json:"description"`
	ScheduledStart   time.Time `json:"scheduledStart" validate:"required"`
	ScheduledEnd     time.Time `json:"scheduledEnd" validate:"required"`
	PenaltiesEnabled bool      `json:"penaltiesEnabled"`
}

// CreateShow handles POST /v1/admin/shows.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Logger, err)
	}
	show, err := h.Lineup.CreateLiveShow(c.Request().Context(), lineup.ShowInput{
		WeekNumber:       req.WeekNumber,
		Title:            req.Title,
		Description:      req.Description,
		ScheduledStart:   req.ScheduledStart,
		ScheduledEnd:     req.ScheduledEnd,
		PenaltiesEnabled: req.PenaltiesEnabled,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusCreated, show)
}

// ListShows handles GET /v1/admin/shows.
func (h *AdminHandler) ListShows(c echo.Context) error {
	shows, err := h.Lineup.ListLiveShows(c.Request().Context())
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, shows)
}

// GetShow handles GET /v1/admin/shows/:id.
func (h *AdminHandler) GetShow(c echo.Context) error {
	show, err := h.Lineup.GetLiveShow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, show)
}

type designationRequest struct {
	UserID     string `json:"userId" validate:"required"`
	ArtistName string `json:"artistName" validate:"required,max=255"`
	Rank       int    `json:"rank" validate:"gte=1,lte=4"`
	Role       string `json:"role" validate:"required,oneof=finalist alternate"`
}

type designateRequest struct {
	Finalists []designationRequest `json:"finalists" validate:"required,min=1,max=4,dive"`
}

// DesignateFinalists handles POST /v1/admin/shows/:id/finalists.
func (h *AdminHandler) DesignateFinalists(c echo.Context) error {
	var req designateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Logger, err)
	}
	batch := make([]lineup.Designation, len(req.Finalists))
	for i, d := range req.Finalists {
		batch[i] = lineup.Designation{
			UserID:     d.UserID,
			ArtistName: d.ArtistName,
			Rank:       model.Slot(d.Rank),
			Role:       model.Role(d.Role),
		}
	}
	created, err := h.Lineup.DesignateFinalists(c.Request().Context(), c.Param("id"), batch)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusCreated, created)
}

// RequestConfirmations handles POST /v1/admin/shows/:id/confirmations.
func (h *AdminHandler) RequestConfirmations(c echo.Context) error {
	n, err := h.Lineup.RequestConfirmations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, echo.Map{"requested": n})
}

// LockLineup handles POST /v1/admin/shows/:id/lock.
func (h *AdminHandler) LockLineup(c echo.Context) error {
	show, err := h.Lineup.LockLineup(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, show)
}

type fallbackRequest struct {
	Mode   string `json:"mode" validate:"required,oneof=battle showcase report cancelled"`
	Reason string `json:"reason" validate:"max=500"`
}

// SetFallbackMode handles PUT /v1/admin/shows/:id/fallback.
func (h *AdminHandler) SetFallbackMode(c echo.Context) error {
	var req fallbackRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Logger, err)
	}
	show, err := h.Lineup.SetFallbackMode(c.Request().Context(), c.Param("id"), middleware.UserID(c),
		model.FallbackMode(req.Mode), req.Reason)
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, show)
}

// ListAudit handles GET /v1/admin/shows/:id/audit.
func (h *AdminHandler) ListAudit(c echo.Context) error {
	entries, err := h.Lineup.ListAudit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, entries)
}

type penaltyRequest struct {
	UserID           string  `json:"userId" validate:"required"`
	ShowID           *string `json:"liveShowId"`
	PenaltyType      string  `json:"penaltyType" validate:"required,oneof=late_cancellation no_show"`
	Severity         string  `json:"severity" validate:"required,oneof=warning temporary_ban permanent_ban"`
	EditionsAffected *int    `json:"editionsAffected" validate:"omitempty,gte=1"`
}

// ApplyPenalty handles POST /v1/admin/penalties.
func (h *AdminHandler) ApplyPenalty(c echo.Context) error {
	var req penaltyRequest
	if err := bind(c, &req); err != nil {
		return fail(c, h.Logger, err)
	}
	p, err := h.Lineup.ApplyPenalty(c.Request().Context(), lineup.PenaltyInput{
		UserID:           req.UserID,
		ShowID:           req.ShowID,
		Type:             model.PenaltyType(req.PenaltyType),
		Severity:         model.PenaltySeverity(req.Severity),
		EditionsAffected: req.EditionsAffected,
	})
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusCreated, p)
}

// ListPenalties handles GET /v1/admin/users/:id/penalties.  With
// ?active=true only penalties in force are returned.
func (h *AdminHandler) ListPenalties(c echo.Context) error {
	list := h.Lineup.ListPenalties
	if c.QueryParam("active") == "true" {
		list = h.Lineup.ActivePenalties
	}
	penalties, err := list(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, penalties)
}
