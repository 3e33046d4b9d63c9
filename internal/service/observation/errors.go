package observation

import "errors"

var (
	ErrFlushInProgress  = errors.New("observations are already being saved")
	ErrSessionAbandoned = errors.New("report session was closed or replaced")
	ErrFilterMismatch   = errors.New("snapshot covers a different employee or date range")
)
