package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
)

// statusByCode maps lineup rejections to HTTP statuses.
var statusByCode = map[lineup.Code]int{
	lineup.CodeNotFound:           http.StatusNotFound,
	lineup.CodeUnauthorized:       http.StatusForbidden,
	lineup.CodeInvalidState:       http.StatusConflict,
	lineup.CodeLineupLocked:       http.StatusLocked,
	lineup.CodeInsufficientLineup: http.StatusUnprocessableEntity,
	lineup.CodeValidation:         http.StatusBadRequest,
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func failWith(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": errorBody{Code: code, Message: msg}})
}

func badRequest(c echo.Context, msg string) error {
	return failWith(c, http.StatusBadRequest, string(lineup.CodeValidation), msg)
}

// fail renders err.  Lineup rejections keep their code; anything else is
// an infrastructure failure, logged and hidden behind a 500.
func fail(c echo.Context, logger *zap.Logger, err error) error {
	var le *lineup.Error
	if errors.As(err, &le) {
		status, found := statusByCode[le.Code]
		if !found {
			status = http.StatusBadRequest
		}
		return failWith(c, status, string(le.Code), le.Message)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return badRequest(c, validationMessage(verrs))
	}
	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return failWith(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

// bind decodes and validates the request body into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return &lineup.Error{Code: lineup.CodeValidation, Message: "invalid request body"}
	}
	return c.Validate(dst)
}
