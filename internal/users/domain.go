package users

import "errors"

// User is a back-office operator.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

var ErrNotFound = errors.New("users: not found")
