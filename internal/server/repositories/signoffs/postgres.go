package signoffs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record relies on ON CONFLICT DO NOTHING so that of any number of
// concurrent callers for the same pair exactly one gets a row back.
func (r *PostgresRepository) Record(ctx context.Context, policyID, userID int64, signedAt time.Time) (*models.Signoff, error) {
	query :=
		`INSERT INTO signoffs (policy_id, user_id, signed_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (policy_id, user_id) DO NOTHING
		 RETURNING id
		 `

	s := &models.Signoff{PolicyID: policyID, UserID: userID, SignedAt: signedAt}
	err := r.db.QueryRowContext(ctx, query, policyID, userID, signedAt).Scan(&s.ID)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, sql.ErrNoRows), dbx.IsUniqueViolation(err):
		return nil, common.ErrConflict
	case dbx.IsForeignKeyViolation(err):
		return nil, common.ErrNotFound
	default:
		return nil, fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) ListByPolicy(ctx context.Context, policyID int64) ([]*models.Signoff, error) {
	query := `SELECT id, policy_id, user_id, signed_at FROM signoffs
		WHERE policy_id = $1
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to select signoffs: %w", err)
	}
	defer rows.Close()

	var result []*models.Signoff
	for rows.Next() {
		s := &models.Signoff{}
		if err := rows.Scan(&s.ID, &s.PolicyID, &s.UserID, &s.SignedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) PolicyIDsSignedBy(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT policy_id FROM signoffs WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select signoffs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM signoffs`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
