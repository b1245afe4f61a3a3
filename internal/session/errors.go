package session

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned by SwitchProvince when the target province is
// outside the profile's accessible set.
var ErrAccessDenied = errors.New("access denied")

// ErrNotAuthenticated is returned by operations that need a signed-in session.
var ErrNotAuthenticated = errors.New("not authenticated")

// IdentityError wraps a sign-in/sign-out failure. It is retained on the store
// until Reset so callers can surface it instead of losing it to a log line.
type IdentityError struct {
	Op  string // "sign-in", "watch", ...
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity %s failed: %v", e.Op, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}
