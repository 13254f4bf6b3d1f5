package task

import "errors"

var (
	ErrTaskNotFound = errors.New("task.repository: task not found")

	ErrBuildQuery = errors.New("task.repository: failed to build query")
	ErrExecQuery  = errors.New("task.repository: failed to execute query")
	ErrScanRow    = errors.New("task.repository: failed to scan row")
)
