package update

import (
	"context"
)

// Proposal is an admin-issued profile change held until the target user
// confirms it with the matching one-time code. The id is distinct from the
// code so that proposals sharing a code (a weak generator could collide)
// remain individually addressable.
type Proposal struct {
	ID       string
	Code     string
	Username string
	FullName string
}

// Queue is the durable, ordered list of pending proposals.
type Queue interface {
	Append(ctx context.Context, p Proposal) error
	// List parses every stored proposal, oldest first. Malformed lines
	// are skipped, not reported.
	List(ctx context.Context) ([]Proposal, error)
	// Replace rewrites the queue to contain exactly the given proposals
	// in the given order.
	Replace(ctx context.Context, ps []Proposal) error
}
