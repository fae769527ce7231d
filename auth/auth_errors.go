package auth

import "errors"

var (
	MissingCredentialsErr = errors.New("login id and password are required")
	SamePasswordErr       = errors.New("new password must differ from the current password")
)
