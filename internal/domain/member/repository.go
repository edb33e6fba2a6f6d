package member

import "context"

type Repository interface {
	GetUser(ctx context.Context, userID string) (*User, error)
	// GetActiveMembership looks up the user's ACTIVE membership in the bound workspace.
	GetActiveMembership(ctx context.Context, userID string) (*Membership, error)
}
