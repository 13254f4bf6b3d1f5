package earning

import "errors"

var (
	ErrBuildQuery = errors.New("earning.repository: failed to build query")
	ErrExecQuery  = errors.New("earning.repository: failed to execute query")
	ErrScanRow    = errors.New("earning.repository: failed to scan row")
)
