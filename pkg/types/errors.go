package types

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDonationNotFound = errors.New("donation not found")
)
