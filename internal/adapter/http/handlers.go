package http

import (
	"errors"
	"net/http"
	"time"

	"contentops-workflow/internal/adapter/middleware"
	"contentops-workflow/internal/domain/apperr"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/logging"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Reusable error payload
type ErrorResponse struct {
	Error   string              `json:"error"`
	Kind    string              `json:"kind,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindInvalidTransition, apperr.KindPrecondition, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError maps usecase errors to responses. Anything outside the apperr
// taxonomy is logged and hidden behind a 500.
func writeError(c echo.Context, err error) error {
	if errors.Is(err, tenant.ErrMissingTenant) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "workspace context required"})
	}
	log := logging.FromContext(c.Request().Context())
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Error().Err(err).
			Str("path", c.Path()).Msg("unhandled error")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if ae.Kind == apperr.KindConfiguration {
		log.Error().Err(err).
			Str("path", c.Path()).Msg("configuration error")
	}
	return c.JSON(statusOf(ae.Kind), ErrorResponse{Error: ae.Message, Kind: string(ae.Kind), Details: ae.Fields})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func tenantOf(c echo.Context) tenant.Context {
	tc, _ := middleware.TenantFrom(c)
	return tc
}
