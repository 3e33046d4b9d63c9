package export

import "errors"

var (
	ErrExportAborted      = errors.New("export aborted: pending observations could not be saved")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrGenerationFailed   = errors.New("failed to generate document")
	ErrNoGeneratorForType = errors.New("no document generator registered for format")
	ErrArchiveDisabled    = errors.New("export archiving is not enabled")
	ErrArchiveNotFound    = errors.New("archived export not found")
	ErrInvalidArchivePath = errors.New("path is not an archived export")
)
