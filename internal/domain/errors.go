package domain

import "errors"

var (
	ErrConfiguration       = errors.New("invalid configuration")
	ErrNotFound            = errors.New("not found")
	ErrPriceNotFound       = errors.New("price not found")
	ErrArityMismatch       = errors.New("coin arity mismatch")
	ErrInvalidSlippage     = errors.New("slippage out of range")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroLPSupply        = errors.New("zero lp supply")
	ErrRateLimited         = errors.New("rate limited")
	ErrWSDisconnect        = errors.New("websocket disconnected")
)
