package api

// Wire types of the PolicySignoff JSON API as seen by clients.

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    string `json:"expires_at"`
}

type PolicyItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"due_date"`
	CreatedBy string `json:"created_by"`
	HasFile   bool   `json:"has_file"`
	Signed    bool   `json:"signed"`
	Overdue   bool   `json:"overdue"`
}

type SignoffRow struct {
	User     string  `json:"user"`
	UserID   int64   `json:"user_id"`
	SignedAt *string `json:"signed_at"`
	Overdue  bool    `json:"overdue"`
}

type SignoffSummary struct {
	TotalUsers  int          `json:"total_users"`
	SignedCount int          `json:"signed_count"`
	Signoffs    []SignoffRow `json:"signoffs"`
}

type PolicyDetail struct {
	PolicyItem
	Description    string         `json:"description"`
	FileName       *string        `json:"file_name,omitempty"`
	FileStatus     string         `json:"file_status"`
	SignoffSummary SignoffSummary `json:"signoff_summary"`
}

type CreatePolicyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// SignResult is the outcome of a sign-off. AlreadySigned is set when the
// server reported an earlier sign-off by the same user.
type SignResult struct {
	Message       string `json:"message"`
	SignedAt      string `json:"signed_at"`
	AlreadySigned bool   `json:"-"`
}

type UploadTarget struct {
	UploadURL string            `json:"upload_url"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type DownloadTarget struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
}
