package models

import "time"

// PolicyStatus is a policy as seen by one user in the list view.
type PolicyStatus struct {
	Policy  *Policy
	Signed  bool
	Overdue bool
}

// SignoffRow is one user's line in a policy's sign-off summary.
// SignedAt is nil when the user has not signed.
type SignoffRow struct {
	UserID   int64
	UserName string
	SignedAt *time.Time
	Overdue  bool
}

// SignoffSummary covers every user in the identity store.
type SignoffSummary struct {
	TotalUsers  int
	SignedCount int
	Rows        []SignoffRow
}

// PolicyDetail is the detail view of a policy for one user.
type PolicyDetail struct {
	PolicyStatus
	Summary SignoffSummary
}

// UploadTarget is a presigned PUT location for a policy document. Headers
// are covered by the signature and must accompany the PUT.
type UploadTarget struct {
	URL     string
	Key     string
	Headers map[string]string
}

// DownloadTarget is a presigned GET location plus the original file name.
type DownloadTarget struct {
	URL      string
	FileName string
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
