// Package status derives sign-off state from the ledger. Nothing here is
// persisted: every read recomputes against the current date so that a policy
// turns overdue at midnight without any write.
package status

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/clock"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

// Overdue reports whether an unsigned obligation is past due. The comparison
// is by calendar date and strict: on the due date itself nothing is overdue.
func Overdue(signed bool, due, today time.Time) bool {
	return !signed && clock.DateOf(today).After(clock.DateOf(due))
}

// List annotates each policy with the current user's status. The input order
// is preserved.
func List(policies []*models.Policy, signedPolicyIDs []int64, today time.Time) []models.PolicyStatus {
	signed := make(map[int64]struct{}, len(signedPolicyIDs))
	for _, id := range signedPolicyIDs {
		signed[id] = struct{}{}
	}

	out := make([]models.PolicyStatus, 0, len(policies))
	for _, p := range policies {
		_, ok := signed[p.ID]
		out = append(out, models.PolicyStatus{
			Policy:  p,
			Signed:  ok,
			Overdue: Overdue(ok, p.DueDate, today),
		})
	}
	return out
}

// Summarize produces one row per user, ordered by user id. Signoffs whose user
// is not in users are ignored.
func Summarize(users []*models.User, signoffs []*models.Signoff, due, today time.Time) models.SignoffSummary {
	byUser := make(map[int64]time.Time, len(signoffs))
	for _, s := range signoffs {
		byUser[s.UserID] = s.SignedAt
	}

	sorted := make([]*models.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	sum := models.SignoffSummary{Rows: make([]models.SignoffRow, 0, len(sorted))}
	for _, u := range sorted {
		row := models.SignoffRow{UserID: u.ID, UserName: u.Name}
		if at, ok := byUser[u.ID]; ok {
			at := at.UTC()
			row.SignedAt = &at
			sum.SignedCount++
		}
		row.Overdue = Overdue(row.SignedAt != nil, due, today)
		sum.Rows = append(sum.Rows, row)
	}
	sum.TotalUsers = len(sum.Rows)
	return sum
}

// Detail combines the current user's own status with the full summary.
func Detail(policy *models.Policy, users []*models.User, signoffs []*models.Signoff, currentUserID int64, today time.Time) models.PolicyDetail {
	signed := false
	for _, s := range signoffs {
		if s.UserID == currentUserID {
			signed = true
			break
		}
	}
	return models.PolicyDetail{
		PolicyStatus: models.PolicyStatus{
			Policy:  policy,
			Signed:  signed,
			Overdue: Overdue(signed, policy.DueDate, today),
		},
		Summary: Summarize(users, signoffs, policy.DueDate, today),
	}
}
