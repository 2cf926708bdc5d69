package httpapi

import (
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
)

// zulu matches the timestamp format the web client expects.
const zulu = "2006-01-02T15:04:05Z"

func formatInstant(t time.Time) string {
	return t.UTC().Format(zulu)
}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

type tokenView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    string `json:"expires_at"`
}

func newTokenView(p *models.TokenPair) tokenView {
	return tokenView{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    formatInstant(p.ExpiresAt),
	}
}

type policyItemView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	CreatedBy string `json:"created_by"`
	HasFile   bool   `json:"has_file"`
	Signed    bool   `json:"signed"`
	Overdue   bool   `json:"overdue"`
}

func newPolicyItemView(ps models.PolicyStatus) policyItemView {
	p := ps.Policy
	return policyItemView{
		ID:        p.ID,
		Title:     p.Title,
		DueDate:   p.DueDate.Format(common.DateLayout),
		CreatedBy: p.CreatorName,
		HasFile:   p.HasFile(),
		Signed:    ps.Signed,
		Overdue:   ps.Overdue,
	}
}

type signoffRowView struct {
	User     string  `json:"user"`
	UserID   int64   `json:"user_id"`
	SignedAt *string `json:"signed_at"`
	Overdue  bool    `json:"overdue"`
}

type summaryView struct {
	TotalUsers  int              `json:"total_users"`
	SignedCount int              `json:"signed_count"`
	Signoffs    []signoffRowView `json:"signoffs"`
}

type policyDetailView struct {
	policyItemView
	Description    string      `json:"description"`
	FileName       *string     `json:"file_name,omitempty"`
	FileStatus     string      `json:"file_status"`
	SignoffSummary summaryView `json:"signoff_summary"`
}

func newPolicyDetailView(d *models.PolicyDetail) policyDetailView {
	rows := make([]signoffRowView, 0, len(d.Summary.Rows))
	for _, r := range d.Summary.Rows {
		row := signoffRowView{User: r.UserName, UserID: r.UserID, Overdue: r.Overdue}
		if r.SignedAt != nil {
			s := formatInstant(*r.SignedAt)
			row.SignedAt = &s
		}
		rows = append(rows, row)
	}

	return policyDetailView{
		policyItemView: newPolicyItemView(d.PolicyStatus),
		Description:    d.Policy.Description,
		FileName:       d.Policy.FileName,
		FileStatus:     string(d.Policy.FileStatus),
		SignoffSummary: summaryView{
			TotalUsers:  d.Summary.TotalUsers,
			SignedCount: d.Summary.SignedCount,
			Signoffs:    rows,
		},
	}
}
