package repository

import (
	"context"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

type UserRepository interface {
	// Create inserts u and returns the persisted row. A unique violation on
	// email is reported as domain.ErrDuplicateUser.
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
