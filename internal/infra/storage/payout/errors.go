package payout

import "errors"

var (
	ErrPayoutNotFound = errors.New("payout.repository: payout not found")

	ErrBuildQuery = errors.New("payout.repository: failed to build query")
	ErrExecQuery  = errors.New("payout.repository: failed to execute query")
	ErrScanRow    = errors.New("payout.repository: failed to scan row")
)
