package tenant

import "errors"

var ErrMissingTenant = errors.New("tenant context required")

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleWriter Role = "WRITER"
	RoleViewer Role = "VIEWER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleWriter, RoleViewer:
		return true
	}
	return false
}

// CanReview reports whether the role may act as an editor-stage reviewer.
func (r Role) CanReview() bool { return r == RoleAdmin || r == RoleEditor }

// Actor is the authenticated workspace member performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// Context scopes every store call to one workspace on behalf of one actor.
// Repositories refuse to run without it.
type Context struct {
	WorkspaceID string
	Actor       Actor
}

func New(workspaceID string, actor Actor) Context {
	return Context{WorkspaceID: workspaceID, Actor: actor}
}

func (c Context) Validate() error {
	if c.WorkspaceID == "" || c.Actor.ID == "" {
		return ErrMissingTenant
	}
	return nil
}

// SystemActorID identifies background work (outbox delivery) in the session discriminator.
const SystemActorID = "system"

// System scopes background work to a workspace without a human actor.
func System(workspaceID string) Context {
	return Context{WorkspaceID: workspaceID, Actor: Actor{ID: SystemActorID}}
}
