package http

import "github.com/labstack/echo/v4"

// Routes carries the handlers and the per-request middleware of the /v1 API.
// Idempotency is optional; without Redis mutating calls are not deduplicated.
type Routes struct {
	Health        *Handler
	Approvals     *ApprovalHandler
	Notifications *NotificationHandler
	Distribution  *DistributionHandler

	Tenant      echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)

	mw := []echo.MiddlewareFunc{r.Tenant}
	if r.Idempotency != nil {
		mw = append(mw, r.Idempotency)
	}
	v1 := e.Group("/v1", mw...)

	v1.POST("/approvals", r.Approvals.Create)
	v1.GET("/approvals", r.Approvals.Queue)
	v1.GET("/approvals/:id", r.Approvals.Get)
	v1.POST("/approvals/:id/transitions", r.Approvals.Transition)
	v1.PUT("/approvals/:id/reviewers", r.Approvals.AssignReviewers)
	v1.POST("/approvals/:id/comments", r.Approvals.Comment)

	v1.GET("/notification-settings", r.Notifications.Settings)
	v1.PUT("/notification-settings", r.Notifications.UpdateSettings)
	v1.GET("/notifications", r.Notifications.List)

	v1.GET("/distribution/profiles", r.Distribution.Profiles)
	v1.PUT("/distribution/profiles/:channel", r.Distribution.UpsertProfile)
	v1.POST("/distribution/jobs", r.Distribution.Schedule)
	v1.GET("/distribution/jobs", r.Distribution.Jobs)
}
