// Package signoffs stores the acknowledgment ledger. The (policy, user)
// pair is unique; the store enforces it, not the caller.
package signoffs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

type Repository interface {
	// Record inserts a signoff. It returns common.ErrConflict when the pair
	// already exists and common.ErrNotFound when the policy or user does not.
	Record(ctx context.Context, policyID, userID int64, signedAt time.Time) (*models.Signoff, error)
	// ListByPolicy returns the signoffs of one policy ordered by user id.
	ListByPolicy(ctx context.Context, policyID int64) ([]*models.Signoff, error)
	// PolicyIDsSignedBy returns the ids of every policy userID has signed.
	PolicyIDsSignedBy(ctx context.Context, userID int64) ([]int64, error)
	DeleteAll(ctx context.Context) error
}
