// Package tokens provides the repository for issued bearer tokens.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/identitystore/internal/server/models"
)

// Repository stores tokens exactly as issued. There is no update or delete:
// tokens are neither rotated nor revoked.
type Repository interface {
	// Create inserts token and fills its ID.
	Create(ctx context.Context, token *models.Token) error
	// Find looks a token up by its opaque value.
	Find(ctx context.Context, value string) (*models.Token, error)
	// ListByUser returns the user's tokens, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Token, error)
}
