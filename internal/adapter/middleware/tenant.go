package middleware

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"contentops-workflow/internal/domain/member"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
	"contentops-workflow/internal/logging"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	HeaderWorkspaceID = "Ax-Workspace-Id"
	HeaderUserID      = "Ax-User-Id"

	tenantKey = "tenant"
)

var reIdent = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// scopeHeaders reads and checks the workspace and user headers.
func scopeHeaders(req *http.Request) (workspaceID, userID, problem string) {
	workspaceID = strings.TrimSpace(req.Header.Get(HeaderWorkspaceID))
	userID = strings.TrimSpace(req.Header.Get(HeaderUserID))
	switch {
	case workspaceID == "":
		return "", "", "missing " + HeaderWorkspaceID
	case !reIdent.MatchString(workspaceID):
		return "", "", "invalid " + HeaderWorkspaceID
	case userID == "":
		return "", "", "missing " + HeaderUserID
	case !reIdent.MatchString(userID):
		return "", "", "invalid " + HeaderUserID
	}
	return workspaceID, userID, ""
}

// Tenant resolves the caller's workspace membership and stores the resulting
// tenant.Context for the handlers. Authentication happens upstream; this only
// trusts the headers a gateway sets.
func Tenant(tx uow.UnitOfWork) echo.MiddlewareFunc {
	log := logging.Component("tenant")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ws, user, problem := scopeHeaders(req)
			if problem != "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": problem})
			}

			tc := tenant.New(ws, tenant.Actor{ID: user})
			var m *member.Membership
			err := tx.WithinTenantTx(req.Context(), tc, func(r uow.Repos) error {
				var err error
				m, err = r.Members.GetActiveMembership(req.Context(), user)
				return err
			})
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Not a member of this workspace."})
			}
			if err != nil {
				log.Error().Err(err).Str("workspace_id", ws).Msg("membership lookup failed")
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}

			tc.Actor.Role = m.Role
			c.Set(tenantKey, tc)
			return next(c)
		}
	}
}

// TenantFrom returns the context stored by Tenant.
func TenantFrom(c echo.Context) (tenant.Context, bool) {
	tc, ok := c.Get(tenantKey).(tenant.Context)
	return tc, ok
}

// WithTenant stores tc directly; handler tests use it to skip the lookup.
func WithTenant(c echo.Context, tc tenant.Context) {
	c.Set(tenantKey, tc)
}
