package domain

import "errors"

var (
	// ErrUnauthenticated is returned when the identity collaborator rejects the
	// caller's session. It is the only condition that aborts a network view.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint (email, referral code) was violated.
	ErrConflict = errors.New("conflict")
)
