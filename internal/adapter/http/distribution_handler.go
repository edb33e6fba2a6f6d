package http

import (
	"net/http"
	"strings"

	distDomain "contentops-workflow/internal/domain/distribution"
	"contentops-workflow/internal/usecase/distribution"

	"github.com/labstack/echo/v4"
)

type DistributionHandler struct{ uc *distribution.Usecase }

func NewDistributionHandler(uc *distribution.Usecase) *DistributionHandler {
	return &DistributionHandler{uc: uc}
}

// Schedule creates a job, or replaces the one named by job_id.
func (h *DistributionHandler) Schedule(c echo.Context) error {
	var in distribution.ScheduleInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	job, err := h.uc.ScheduleOrUpdate(c.Request().Context(), tenantOf(c), in)
	if err != nil {
		return writeError(c, err)
	}
	code := http.StatusCreated
	if in.JobID != "" {
		code = http.StatusOK
	}
	return c.JSON(code, job)
}

// Jobs serves ?status=A,B; without it the upcoming jobs are listed.
func (h *DistributionHandler) Jobs(c echo.Context) error {
	var statuses []distDomain.JobStatus
	for _, raw := range strings.Split(c.QueryParam("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			statuses = append(statuses, distDomain.JobStatus(strings.ToUpper(raw)))
		}
	}
	out, err := h.uc.Jobs(c.Request().Context(), tenantOf(c), statuses...)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DistributionHandler) Profiles(c echo.Context) error {
	out, err := h.uc.Profiles(c.Request().Context(), tenantOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UpsertProfile connects the channel named in the path.
func (h *DistributionHandler) UpsertProfile(c echo.Context) error {
	var in distribution.ProfileInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	in.Channel = distDomain.Channel(strings.ToUpper(c.Param("channel")))
	out, err := h.uc.UpsertProfile(c.Request().Context(), tenantOf(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
