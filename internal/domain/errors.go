package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrLockHeld      = errors.New("lock already held")

	// Odds and leg validation.
	ErrInvalidOdds   = errors.New("invalid odds: american odds magnitude must be at least 100")
	ErrEmptyLegs     = errors.New("parlay requires at least two legs")
	ErrIncompleteLeg = errors.New("leg is missing required pricing data")
	ErrTooManyLegs   = errors.New("parlay exceeds maximum leg count")
	ErrUnknownMarket = errors.New("unknown market")
	ErrInvalidStake  = errors.New("stake must be greater than zero")

	// Settlement and ledger.
	ErrIncompleteSettlement = errors.New("leg outcomes do not cover every leg")
	ErrAlreadySettled       = errors.New("wager already settled")
	ErrInsufficientBalance  = errors.New("stake exceeds account balance")
	ErrInvalidAccount       = errors.New("invalid account")
)
