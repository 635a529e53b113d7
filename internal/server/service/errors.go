package service

import "errors"

// Domain errors. Handlers map these to HTTP statuses and short messages;
// anything else is treated as a persistence failure and surfaced as a
// generic retry message.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrAlreadyExists      = errors.New("already exists")
)
