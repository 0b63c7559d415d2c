package profile

import "errors"

// Sentinel kinds for profile errors.
var (
	ErrDecode  = errors.New("profile decode failed")
	ErrInvalid = errors.New("invalid profile")
)
