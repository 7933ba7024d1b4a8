package wallet

import "errors"

var (
	// ErrInvalidIdentifier means the input is not a well-formed UUID.
	// Fatal for the caller: no datastore query is attempted.
	ErrInvalidIdentifier = errors.New("invalid child identifier")

	// ErrWalletUnavailable means both the rollup path and the ledger
	// fallback failed. Callers must render an explicit error state,
	// never a zero wallet.
	ErrWalletUnavailable = errors.New("wallet unavailable")
)
