// Package groups provides the group repository and the user_group join.
package groups

import (
	"context"

	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	// AddMember inserts the join row. Adding an existing member is
	// common.ErrorAlreadyExists.
	AddMember(ctx context.Context, userID string, groupID int64) (*models.UserGroup, error)
	// ListByUser returns the groups userID belongs to, ordered by name.
	ListByUser(ctx context.Context, userID string) ([]*models.Group, error)
	// ListMembers returns the users of groupID, ordered by email.
	ListMembers(ctx context.Context, groupID int64) ([]*models.User, error)
}
