package shared

import "errors"

var (
	ErrSessionMissing    = errors.New("session missing")
	ErrCSRFTokenMissing  = errors.New("csrf token missing")
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
