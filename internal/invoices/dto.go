package invoices

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// InvoiceRequest is the POST /invoices payload. The owning student may be
// given at the top level or nested under account.
type InvoiceRequest struct {
	Amount    decimal.NullDecimal `json:"amount"`
	DueDate   string              `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Type      string              `json:"type" validate:"required,max=64"`
	StudentID string              `json:"studentId"`
	Account   *struct {
		StudentID string `json:"studentId"`
	} `json:"account,omitempty"`
}

// Student returns the owning student id from whichever field was supplied.
func (r InvoiceRequest) Student() string {
	if s := strings.TrimSpace(r.StudentID); s != "" {
		return s
	}
	if r.Account != nil {
		return strings.TrimSpace(r.Account.StudentID)
	}
	return ""
}
