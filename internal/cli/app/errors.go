package app

import "errors"

var (
	ErrLoginRequired   = errors.New("login required: run 'pantry login'")
	ErrAccessDenied    = errors.New("access denied")
	ErrAlreadyLoggedIn = errors.New("already logged in: run 'pantry logout' first")
)
