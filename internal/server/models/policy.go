// Package models defines server-side data models persisted in the database
// and the derived views computed from them.
package models

import "time"

// FileStatus tracks the attached document of a policy.
type FileStatus string

const (
	// FileStatusNone means no document was ever requested for upload.
	FileStatusNone FileStatus = "none"
	// FileStatusPending means an upload URL was issued but the object has
	// not been confirmed in the store yet.
	FileStatusPending FileStatus = "pending"
	// FileStatusUploaded means the object was seen in the store.
	FileStatusUploaded FileStatus = "uploaded"
)

// Policy is a document plus metadata requiring acknowledgment by all users.
type Policy struct {
	ID          int64
	Title       string
	Description string
	// DueDate is a calendar date stored as midnight UTC.
	DueDate time.Time
	// FileKey is the object-storage key of the attached document, if any.
	FileKey *string
	// FileName is the original client-side file name of the document.
	FileName   *string
	FileStatus FileStatus
	CreatedBy  int64
	// CreatorName is joined in from users for display.
	CreatorName string
	CreatedAt   time.Time
}

// HasFile reports whether a file reference is recorded on the policy,
// regardless of whether the bytes were confirmed.
func (p *Policy) HasFile() bool {
	return p.FileKey != nil && *p.FileKey != ""
}
