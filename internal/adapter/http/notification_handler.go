package http

import (
	"net/http"
	"strings"

	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/usecase/notification"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct{ d *notification.Dispatcher }

func NewNotificationHandler(d *notification.Dispatcher) *NotificationHandler {
	return &NotificationHandler{d: d}
}

func (h *NotificationHandler) Settings(c echo.Context) error {
	out, err := h.d.Settings(c.Request().Context(), tenantOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var in notification.SettingsInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	out, err := h.d.UpdateSettings(c.Request().Context(), tenantOf(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// List serves ?status=PENDING|PROCESSING|SENT|FAILED for external pollers.
func (h *NotificationHandler) List(c echo.Context) error {
	var status *notifDomain.Status
	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		s := notifDomain.Status(strings.ToUpper(raw))
		status = &s
	}
	out, err := h.d.List(c.Request().Context(), tenantOf(c), status)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		out = []notifDomain.Notification{}
	}
	return c.JSON(http.StatusOK, out)
}
