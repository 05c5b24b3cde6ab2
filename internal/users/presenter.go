package users

import (
	"strconv"

	"github.com/campus-finance/finance/internal/hal"
)

var links = hal.Table{
	"user": {
		hal.AnyState: {
			{Rel: "self", Path: "/users/{id}"},
			{Rel: "users", Path: "/users"},
		},
	},
	"users": {
		hal.AnyState: {{Rel: "self", Path: "/users"}},
	},
}

func Present(base string, u User) (hal.Resource, error) {
	if u.ID <= 0 {
		return hal.Resource{}, errNotValid()
	}
	l, err := links.Links(base, "user", hal.AnyState, hal.Params{"id": strconv.FormatInt(u.ID, 10)})
	if err != nil {
		return hal.Resource{}, err
	}
	return hal.Resource{Entity: u, Links: l}, nil
}

func PresentList(base string, list []User) (hal.Collection, error) {
	items := make([]hal.Resource, 0, len(list))
	for _, u := range list {
		res, err := Present(base, u)
		if err != nil {
			return hal.Collection{}, err
		}
		items = append(items, res)
	}
	l, err := links.Links(base, "users", hal.AnyState, nil)
	if err != nil {
		return hal.Collection{}, err
	}
	return hal.NewCollection("userList", items, l), nil
}
