package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

var clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClockTime parses a 24h "HH:MM" string into minutes since midnight.
func ParseClockTime(s string) (int, error) {
	m := clockTimeRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute, nil
}

// IsValidClockTime reports whether s is a 24h "HH:MM" time of day.
func IsValidClockTime(s string) bool {
	_, err := ParseClockTime(s)
	return err == nil
}

// ValidateDateRange checks both bounds are YYYY-MM-DD and start is not after end.
func ValidateDateRange(startField, start, endField, end string) ValidationErrors {
	var errs ValidationErrors

	startDate, startOK := IsValidDate(start)
	if !startOK {
		errs = append(errs, ValidationError{
			Field:   startField,
			Message: startField + " must be in YYYY-MM-DD format",
		})
	}

	endDate, endOK := IsValidDate(end)
	if !endOK {
		errs = append(errs, ValidationError{
			Field:   endField,
			Message: endField + " must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && startDate.After(endDate) {
		errs = append(errs, ValidationError{
			Field:   endField,
			Message: endField + " must not be before " + startField,
		})
	}

	return errs
}
