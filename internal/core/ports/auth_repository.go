package ports

import (
	"context"

	"github.com/baketrak/order-system/internal/core/domain"
)

// AuthRepository defines the interface for user persistence.
type AuthRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns users, optionally filtered by role. Used by the
	// administrator view to pick couriers for assignment.
	List(ctx context.Context, role string) ([]*domain.User, error)
}
