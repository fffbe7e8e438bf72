package pantry

import "errors"

var (
	ErrNilLoader       = errors.New("page loader cannot be nil")
	ErrNilFetch        = errors.New("fetch function cannot be nil")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrInvalidProfile  = errors.New("profile has non-positive limits")
	ErrSchedulerClosed = errors.New("scheduler has been closed")
)
