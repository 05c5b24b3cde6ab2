package accounts

import (
	"strconv"

	"github.com/campus-finance/finance/internal/hal"
)

const (
	kindAccount    = "account"
	kindCollection = "accounts"
	listName       = "accountList"
)

var links = hal.Table{
	kindAccount: {
		hal.AnyState: {
			{Rel: "self", Path: "/accounts/{id}"},
			{Rel: "student", Path: "/accounts/student/{studentId}"},
			{Rel: "invoices", Path: "/accounts/{id}/invoices"},
			{Rel: "accounts", Path: "/accounts"},
		},
	},
	kindCollection: {
		hal.AnyState: {{Rel: "self", Path: "/accounts"}},
	},
}

// Present wraps a persisted account with its links.
func Present(base string, account Account) (hal.Resource, error) {
	if account.ID <= 0 {
		return hal.Resource{}, errNotValid()
	}
	l, err := links.Links(base, kindAccount, hal.AnyState, hal.Params{
		"id":        strconv.FormatInt(account.ID, 10),
		"studentId": account.StudentID,
	})
	if err != nil {
		return hal.Resource{}, errNotValid()
	}
	return hal.Resource{Entity: account, Links: l}, nil
}

// PresentList wraps accounts as an accountList collection.
func PresentList(base string, list []Account) (hal.Collection, error) {
	items := make([]hal.Resource, 0, len(list))
	for _, account := range list {
		res, err := Present(base, account)
		if err != nil {
			return hal.Collection{}, err
		}
		items = append(items, res)
	}
	l, err := links.Links(base, kindCollection, hal.AnyState, nil)
	if err != nil {
		return hal.Collection{}, err
	}
	return hal.NewCollection(listName, items, l), nil
}
