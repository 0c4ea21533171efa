package directory

import (
	"context"
)

// Repository defines account directory persistence operations
type Repository interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error

	Create(ctx context.Context, acc *Account) error
	Get(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	// All returns copies of every account in username order.
	All(ctx context.Context) ([]*Account, error)
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	Username string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.Username
}

// ErrDuplicateUsername indicates username uniqueness violation
type ErrDuplicateUsername struct {
	Username string
}

func (e ErrDuplicateUsername) Error() string {
	return "account already exists: " + e.Username
}
