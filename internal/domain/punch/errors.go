package punch

import "errors"

// Punch domain errors
var (
	// Inference errors
	ErrMissingRequiredField   = errors.New("entry time is required when lunch or exit times are present")
	ErrShiftSpansMultipleDays = errors.New("clock times cannot span more than one midnight")
	ErrDuplicateKind          = errors.New("each clock event kind may appear only once per shift")
	ErrInvalidKind            = errors.New("unknown clock event kind")
	ErrInvalidClockTime       = errors.New("clock time must be in HH:MM format")

	// Submission errors
	ErrSubmissionFailed = errors.New("punch submission rejected by the HR API")
	ErrPunchNotFound    = errors.New("punch not found")

	// Import errors
	ErrImportFileInvalid = errors.New("import file is not a readable spreadsheet")
	ErrImportHeader      = errors.New("import file is missing required columns")
)
