package report

import "errors"

var (
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrRowNotInReport     = errors.New("date is not part of the current report")
	ErrNoActiveSession    = errors.New("no report is open for this user")
	ErrPersistenceFailure = errors.New("failed to persist changes to the HR API")
	ErrUpstream           = errors.New("HR API request failed")
)
