package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/clock"
	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/policysignoff/internal/server/status"
	"github.com/dmitrijs2005/policysignoff/internal/validate"
)

// PolicyService covers policy creation, the list and detail views and
// signing off.
type PolicyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validate.Validator
	clock       clock.Clock
	location    *time.Location
}

// NewPolicyService builds the service. loc decides which calendar day
// "today" is; nil means UTC.
func NewPolicyService(db *sql.DB, m repomanager.RepositoryManager, v *validate.Validator, clk clock.Clock, loc *time.Location) *PolicyService {
	if loc == nil {
		loc = time.UTC
	}
	return &PolicyService{db: db, repomanager: m, validator: v, clock: clk, location: loc}
}

func (s *PolicyService) today() time.Time {
	return clock.Today(s.clock, s.location)
}

// List returns every policy, soonest due first, with userID's status.
func (s *PolicyService) List(ctx context.Context, userID int64) ([]models.PolicyStatus, error) {
	policies, err := s.repomanager.Policies(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing policies: %w", err)
	}
	signed, err := s.repomanager.Signoffs(s.db).PolicyIDsSignedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing signoffs: %w", err)
	}
	return status.List(policies, signed, s.today()), nil
}

// Create validates in and stores a new policy owned by userID. The due date
// may not lie before today.
func (s *PolicyService) Create(ctx context.Context, userID int64, in CreatePolicyInput) (*models.Policy, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	due, err := time.Parse(common.DateLayout, in.DueDate)
	if err != nil {
		return nil, common.NewValidationError("due_date", "The due date is not a valid date.")
	}
	if due.Before(s.today()) {
		return nil, common.NewValidationError("due_date", "The due date must be a date after or equal to today.")
	}

	repo := s.repomanager.Policies(s.db)
	p, err := repo.Create(ctx, &models.Policy{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating policy: %w", err)
	}

	created, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading policy: %w", err)
	}
	return created, nil
}

// Get returns the detail view of one policy with a row for every user.
func (s *PolicyService) Get(ctx context.Context, userID, policyID int64) (*models.PolicyDetail, error) {
	p, err := s.repomanager.Policies(s.db).GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	signoffs, err := s.repomanager.Signoffs(s.db).ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("error listing signoffs: %w", err)
	}

	d := status.Detail(p, users, signoffs, userID, s.today())
	return &d, nil
}

// SignOff records that userID acknowledged policyID now. A repeated call
// fails with common.ErrConflict and leaves the first timestamp untouched.
func (s *PolicyService) SignOff(ctx context.Context, userID, policyID int64) (*models.Signoff, error) {
	if _, err := s.repomanager.Policies(s.db).GetByID(ctx, policyID); err != nil {
		return nil, err
	}

	signedAt := s.clock.Now().UTC().Truncate(time.Microsecond)
	so, err := s.repomanager.Signoffs(s.db).Record(ctx, policyID, userID, signedAt)
	if err != nil {
		return nil, err
	}
	return so, nil
}
