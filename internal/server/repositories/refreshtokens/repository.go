// Package refreshtokens declares storage for the opaque refresh tokens that
// back session renewal.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID valid until expiresAt.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Take atomically removes token and returns it, so a token can be
	// redeemed once. A missing token yields common.ErrNotFound.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes token if it belongs to userID. Deleting an absent or
	// foreign token is not an error.
	Delete(ctx context.Context, userID int64, token string) error

	// DeleteExpired drops every token that expired before now and reports how
	// many rows went away.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
