package domain

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported monitor type")
	// ErrAsyncMonitor is returned when a distributed monitor is executed
	// synchronously; those are dispatched and their result arrives by callback.
	ErrAsyncMonitor          = errors.New("monitor is probed asynchronously")
	ErrNotFound              = errors.New("not found")
	ErrUnsupportedPlatform   = errors.New("unsupported webhook platform")
	ErrMissingPlatformConfig = errors.New("missing webhook platform config")
)
