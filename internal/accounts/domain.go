package accounts

import "errors"

// Account is a student's billing record.
type Account struct {
	ID        int64  `json:"id"`
	StudentID string `json:"studentId"`
	// HasOutstandingBalance is derived on read from the account's invoices and
	// never persisted.
	HasOutstandingBalance bool `json:"hasOutstandingBalance"`
}

// Store-level errors returned by repository implementations.
var (
	ErrNotFound       = errors.New("accounts: not found")
	ErrStudentIDTaken = errors.New("accounts: student id already exists")
)
