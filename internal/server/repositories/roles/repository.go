// Package roles provides the role repository. Roles are looked up by name;
// the well-known ones are inserted by the schema migration.
package roles

import (
	"context"

	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}
