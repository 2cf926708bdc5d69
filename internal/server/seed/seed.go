// Package seed loads the demo data set: six users, four policies and five
// sign-offs. Seeding wipes existing rows first, so it can be re-run.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/dbx"
	"github.com/dmitrijs2005/policysignoff/internal/server/auth"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/repositories/repomanager"
)

// DefaultPassword is given to every seeded user unless overridden.
const DefaultPassword = "password"

type User struct {
	Name  string
	Email string
}

type Policy struct {
	Title       string
	Description string
	DueDate     string
	// CreatedBy is the email of the creating user.
	CreatedBy string
	FileKey   string
	FileName  string
}

type Signoff struct {
	// Policy is the title of the signed policy.
	Policy   string
	Email    string
	SignedAt time.Time
}

var Users = []User{
	{"Jane Admin", "jane@example.com"},
	{"Mike Manager", "mike@example.com"},
	{"Alice Thompson", "alice@example.com"},
	{"Bob Martinez", "bob@example.com"},
	{"Charlie Kim", "charlie@example.com"},
	{"Dana Williams", "dana@example.com"},
}

var Policies = []Policy{
	{
		Title:       "2026 Employee Handbook",
		Description: "Annual employee handbook covering company policies, benefits, and code of conduct for 2026.",
		DueDate:     "2026-03-01",
		CreatedBy:   "jane@example.com",
		FileKey:     "policies/employee-handbook-2026.pdf",
		FileName:    "employee-handbook-2026.pdf",
	},
	{
		Title:       "HIPAA Annual Training",
		Description: "Required annual HIPAA compliance training acknowledgment for all staff with access to protected health information.",
		DueDate:     "2026-03-15",
		CreatedBy:   "jane@example.com",
		FileKey:     "policies/hipaa-training-2026.pdf",
		FileName:    "hipaa-training-2026.pdf",
	},
	{
		Title:       "Workplace Safety Guidelines",
		Description: "Updated workplace safety guidelines including emergency procedures, ergonomics standards, and incident reporting protocols.",
		DueDate:     "2026-04-30",
		CreatedBy:   "jane@example.com",
	},
	{
		Title:       "Remote Work Policy Update",
		Description: "Revised remote work policy outlining expectations for home office setup, availability, and communication standards.",
		DueDate:     "2026-02-10",
		CreatedBy:   "mike@example.com",
	},
}

func at(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

var Signoffs = []Signoff{
	{"2026 Employee Handbook", "alice@example.com", at("2026-02-10 09:15:00")},
	{"2026 Employee Handbook", "bob@example.com", at("2026-02-11 14:32:00")},
	{"2026 Employee Handbook", "charlie@example.com", at("2026-02-14 11:08:00")},
	{"HIPAA Annual Training", "alice@example.com", at("2026-02-12 10:00:00")},
	{"HIPAA Annual Training", "mike@example.com", at("2026-02-13 16:45:00")},
}

// Result counts what was inserted.
type Result struct {
	Users    int
	Policies int
	Signoffs int
}

// Run replaces the contents of the database with the demo data set in a
// single transaction.
func Run(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, password string) (*Result, error) {
	if password == "" {
		password = DefaultPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	res := &Result{}
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := m.Signoffs(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := m.Policies(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := m.Users(tx).DeleteAll(ctx); err != nil {
			return err
		}

		userIDs := make(map[string]int64, len(Users))
		for _, u := range Users {
			created, err := m.Users(tx).Create(ctx, &models.User{Name: u.Name, Email: u.Email, PasswordHash: hash})
			if err != nil {
				return fmt.Errorf("error creating user %s: %w", u.Email, err)
			}
			userIDs[u.Email] = created.ID
			res.Users++
		}

		policyIDs := make(map[string]int64, len(Policies))
		for _, p := range Policies {
			due, err := time.Parse(time.DateOnly, p.DueDate)
			if err != nil {
				return err
			}
			created, err := m.Policies(tx).Create(ctx, &models.Policy{
				Title:       p.Title,
				Description: p.Description,
				DueDate:     due,
				CreatedBy:   userIDs[p.CreatedBy],
			})
			if err != nil {
				return fmt.Errorf("error creating policy %q: %w", p.Title, err)
			}
			if p.FileKey != "" {
				if err := m.Policies(tx).SetFile(ctx, created.ID, p.FileKey, p.FileName); err != nil {
					return err
				}
				if err := m.Policies(tx).MarkUploaded(ctx, created.ID, p.FileKey); err != nil {
					return err
				}
			}
			policyIDs[p.Title] = created.ID
			res.Policies++
		}

		for _, s := range Signoffs {
			if _, err := m.Signoffs(tx).Record(ctx, policyIDs[s.Policy], userIDs[s.Email], s.SignedAt); err != nil {
				return fmt.Errorf("error recording sign-off of %q by %s: %w", s.Policy, s.Email, err)
			}
			res.Signoffs++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
