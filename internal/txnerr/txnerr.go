// Package txnerr declares the error taxonomy from §7 that is not already
// covered by kv's store-level sentinels: outcomes a Writer can produce that
// have nothing to do with the backing store's CAS semantics.
package txnerr

import "errors"

var (
	// ErrDuplicateTxn means the caller supplied a txnId that already exists
	// in the round (embedded variant) or as a TxnDetail (indexed variant).
	// Non-retryable (§4.3, §4.4).
	ErrDuplicateTxn = errors.New("txn: duplicate transaction id")

	// ErrDeadlineExceeded means the operation deadline (§4.2) was reached
	// before the append could complete.
	ErrDeadlineExceeded = errors.New("txn: operation deadline exceeded")

	// ErrRoundFull means the round has reached the configured maximum
	// transaction count. Both writers fail the append with this error and
	// do not retry it; it is not reported as a business rejection.
	ErrRoundFull = errors.New("txn: round exceeds maximum size")

	// ErrRoundNotFound is returned by Reader.GetRound when no round
	// document exists for the requested id.
	ErrRoundNotFound = errors.New("txn: round not found")
)
