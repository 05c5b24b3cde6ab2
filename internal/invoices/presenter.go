package invoices

import (
	"encoding/json"
	"strconv"

	"github.com/campus-finance/finance/internal/hal"
)

const (
	kindInvoice         = "invoice"
	kindCollection      = "invoices"
	kindAccountInvoices = "accountInvoices"
	listName            = "invoiceList"
)

// The OUTSTANDING row mirrors CanTransition: only legal moves are advertised.
var links = hal.Table{
	kindInvoice: {
		hal.AnyState: {
			{Rel: "self", Path: "/invoices/{id}"},
			{Rel: "invoices", Path: "/invoices"},
		},
		string(StatusOutstanding): {
			{Rel: "cancel", Path: "/invoices/{reference}/cancel"},
			{Rel: "pay", Path: "/invoices/{reference}/pay"},
		},
	},
	kindCollection: {
		hal.AnyState: {{Rel: "self", Path: "/invoices"}},
	},
	kindAccountInvoices: {
		hal.AnyState: {
			{Rel: "self", Path: "/accounts/{id}/invoices"},
			{Rel: "account", Path: "/accounts/{id}"},
		},
	},
}

// invoiceView is the wire shape of an invoice.
type invoiceView struct {
	ID        int64       `json:"id"`
	Reference string      `json:"reference"`
	Amount    json.Number `json:"amount"`
	DueDate   string      `json:"dueDate"`
	Type      Type        `json:"type"`
	Status    Status      `json:"status"`
	StudentID string      `json:"studentId,omitempty"`
}

// Present wraps a persisted invoice with its links. Pay and cancel are only
// linked while the invoice is OUTSTANDING.
func Present(base string, inv Invoice) (hal.Resource, error) {
	if inv.ID <= 0 || inv.Reference == "" || inv.DueDate.IsZero() {
		return hal.Resource{}, errNotValid()
	}
	l, err := links.Links(base, kindInvoice, string(inv.Status), hal.Params{
		"id":        strconv.FormatInt(inv.ID, 10),
		"reference": inv.Reference,
	})
	if err != nil {
		return hal.Resource{}, errNotValid()
	}
	return hal.Resource{Entity: newView(inv), Links: l}, nil
}

// PresentList wraps invoices as an invoiceList collection.
func PresentList(base string, list []Invoice) (hal.Collection, error) {
	l, err := links.Links(base, kindCollection, hal.AnyState, nil)
	if err != nil {
		return hal.Collection{}, err
	}
	return presentCollection(base, list, l)
}

// PresentAccountList wraps the invoices of one account.
func PresentAccountList(base string, accountID int64, list []Invoice) (hal.Collection, error) {
	l, err := links.Links(base, kindAccountInvoices, hal.AnyState, hal.Params{
		"id": strconv.FormatInt(accountID, 10),
	})
	if err != nil {
		return hal.Collection{}, err
	}
	return presentCollection(base, list, l)
}

func presentCollection(base string, list []Invoice, l hal.Links) (hal.Collection, error) {
	items := make([]hal.Resource, 0, len(list))
	for _, inv := range list {
		res, err := Present(base, inv)
		if err != nil {
			return hal.Collection{}, err
		}
		items = append(items, res)
	}
	return hal.NewCollection(listName, items, l), nil
}

func newView(inv Invoice) invoiceView {
	return invoiceView{
		ID:        inv.ID,
		Reference: inv.Reference,
		Amount:    json.Number(inv.Amount.StringFixed(2)),
		DueDate:   inv.DueDate.Format(DateLayout),
		Type:      inv.Type,
		Status:    inv.Status,
		StudentID: inv.StudentID,
	}
}
