package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository stores storefront accounts. Lookups by username and email
// ignore case; a missing user is shared.ErrNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}
