// Package policies declares the storage contract for policy documents.
package policies

import (
	"context"

	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

type Repository interface {
	// Create inserts a policy and fills in ID, FileStatus and CreatedAt.
	Create(ctx context.Context, policy *models.Policy) (*models.Policy, error)
	// GetByID returns common.ErrNotFound when no policy has that id.
	GetByID(ctx context.Context, id int64) (*models.Policy, error)
	// List returns all policies ordered by due date, then id.
	List(ctx context.Context) ([]*models.Policy, error)
	// SetFile records a file reference in the pending state, replacing any
	// previous one.
	SetFile(ctx context.Context, id int64, key, name string) error
	// MarkUploaded flips the file status to uploaded once the object is
	// confirmed in storage.
	MarkUploaded(ctx context.Context, id int64, key string) error
	DeleteAll(ctx context.Context) error
}
