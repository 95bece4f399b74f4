package service

import "errors"

// Failure taxonomy surfaced to the buyer. Each sentinel's text is the
// single human-readable message returned by the API; raw RPC or Shopify
// detail stays in the logs.
var (
	// ErrInvalidSession covers both a never-created and an expired
	// reservation; the store's TTL makes the two indistinguishable.
	ErrInvalidSession = errors.New("invalid or expired order session")

	// ErrDuplicateTransaction means the transaction hash has already been
	// claimed or consumed by an order.
	ErrDuplicateTransaction = errors.New("transaction already used for another order")

	// Chain verification failures, in the order the checks run.
	ErrTxNotFound       = errors.New("transaction not found")
	ErrWrongContract    = errors.New("transaction is not a USDC transfer")
	ErrTxFailed         = errors.New("transaction failed or not confirmed")
	ErrNotTransfer      = errors.New("transaction is not a transfer")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrAmountMismatch   = errors.New("invalid payment amount")

	// ErrOrderCreation means Shopify rejected the order. Never retried
	// here: a blind retry risks a duplicate order.
	ErrOrderCreation = errors.New("order creation failed")
)
