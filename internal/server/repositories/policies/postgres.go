package policies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

// PostgresRepository implements policy storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectPolicy = `SELECT p.id, p.title, p.description, p.due_date, p.file_key, p.file_name,
		p.file_status, p.created_by, u.name, p.created_at
		FROM policies p JOIN users u ON u.id = p.created_by`

type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (*models.Policy, error) {
	p := &models.Policy{}
	var status string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.DueDate, &p.FileKey, &p.FileName,
		&status, &p.CreatedBy, &p.CreatorName, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.FileStatus = models.FileStatus(status)
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, policy *models.Policy) (*models.Policy, error) {
	query :=
		`INSERT INTO policies (title, description, due_date, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, file_status, created_at
		 `

	var status string
	err := r.db.QueryRowContext(ctx, query,
		policy.Title, policy.Description, policy.DueDate, policy.CreatedBy).
		Scan(&policy.ID, &status, &policy.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	policy.FileStatus = models.FileStatus(status)

	return policy, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Policy, error) {
	query := selectPolicy + ` WHERE p.id = $1`

	p, err := scanPolicy(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Policy, error) {
	query := selectPolicy + ` ORDER BY p.due_date, p.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select policies: %w", err)
	}
	defer rows.Close()

	var result []*models.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SetFile(ctx context.Context, id int64, key, name string) error {
	query := `UPDATE policies SET file_key = $2, file_name = $3, file_status = 'pending' WHERE id = $1`
	return r.execOne(ctx, query, id, key, name)
}

// MarkUploaded only matches while key is still the recorded file key, so a
// confirmation racing with a newer upload request is reported as not found.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, id int64, key string) error {
	query := `UPDATE policies SET file_status = 'uploaded' WHERE id = $1 AND file_key = $2`
	return r.execOne(ctx, query, id, key)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}

// DeleteAll removes every policy. Signoffs referencing them must be gone first.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM policies`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
