package provider

import "errors"

var (
	ErrProviderNotFound    = errors.New("provider.repository: provider not found")
	ErrInsufficientBalance = errors.New("provider.repository: insufficient balance")

	ErrBuildQuery = errors.New("provider.repository: failed to build query")
	ErrExecQuery  = errors.New("provider.repository: failed to execute query")
	ErrScanRow    = errors.New("provider.repository: failed to scan row")
)
