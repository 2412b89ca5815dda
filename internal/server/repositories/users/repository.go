// Package users declares the user repository contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning an ID when empty and filling RegTime.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// Update writes every mutable column of user.
	Update(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches the stored, already normalised email exactly.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
