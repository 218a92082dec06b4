package domain

import "errors"

// Sentinel errors. The messages are the wire contract: handlers return them
// verbatim in the {"error": ...} body.
var (
	ErrMissingFields    = errors.New("missing fields")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid createdAt")
	ErrAccountNotFound  = errors.New("account not found")
	ErrMerchantNotFound = errors.New("account or merchant not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateTx      = errors.New("duplicate txId")
	ErrUnauthorized     = errors.New("unauthorized")
)
