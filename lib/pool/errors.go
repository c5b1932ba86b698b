package pool

import "errors"

var (
	// lifecycle
	ErrAlreadyInitialized = errors.New("pool already initialized")
	ErrNotInitialized     = errors.New("pool not initialized")

	// bounds
	ErrPriceLimit      = errors.New("price limit on wrong side of price or outside range")
	ErrPriceOutOfRange = errors.New("price outside the pool range")

	// arithmetic
	ErrZeroAmount           = errors.New("zero amount specified")
	ErrInsufficientPosition = errors.New("liquidity removal exceeds position")

	// funding
	ErrInsufficientFunding = errors.New("funding callback did not raise pool balance enough")
)
