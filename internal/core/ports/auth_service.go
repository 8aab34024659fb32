package ports

import (
	"context"

	"github.com/baketrak/order-system/internal/core/domain"
)

type AuthService interface {
	// Register creates a self-service account. The role is always customer;
	// privileged roles go through CreateUser.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// CreateUser is the administrator path and accepts any role from the
	// closed role set.
	CreateUser(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
