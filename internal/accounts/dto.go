package accounts

// AccountRequest is the body accepted by POST and PUT /accounts.
type AccountRequest struct {
	StudentID string `json:"studentId" validate:"required,max=64"`
}
