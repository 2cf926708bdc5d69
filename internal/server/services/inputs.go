package services

// Request payloads. The json tags double as the field names reported in
// validation errors.

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreatePolicyInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

type UploadInput struct {
	FileName    string `json:"filename" validate:"required,max=255,docname"`
	ContentType string `json:"content_type" validate:"required,oneof=application/pdf application/msword application/vnd.openxmlformats-officedocument.wordprocessingml.document"`
}
