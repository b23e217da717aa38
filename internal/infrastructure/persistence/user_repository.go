package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"gorm.io/gorm"
)

// GormUserRepository stores shop accounts. Usernames are kept lower case and
// emails are compared case-insensitively.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func normalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return first[identity.User](r.db.WithContext(ctx), "id = ?", id)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return first[identity.User](r.db.WithContext(ctx), "username = ?", normalizeIdentifier(username))
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return exists[identity.User](r.db.WithContext(ctx), "username = ?", normalizeIdentifier(username))
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists[identity.User](r.db.WithContext(ctx), "LOWER(email) = ?", normalizeIdentifier(email))
}

func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
