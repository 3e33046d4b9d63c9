package punch

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
)

// ========================================
// MANUAL JORNADA DTOs
// ========================================

type JornadaRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"` // nominal date, YYYY-MM-DD
	Entry      *string `json:"entry,omitempty"`
	LunchOut   *string `json:"lunch_out,omitempty"`
	LunchIn    *string `json:"lunch_in,omitempty"`
	Exit       *string `json:"exit,omitempty"`
}

func (r *JornadaRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"entry", r.Entry},
		{"lunch_out", r.LunchOut},
		{"lunch_in", r.LunchIn},
		{"exit", r.Exit},
	}
	present := 0
	for _, f := range fields {
		if f.value == nil || validator.IsEmpty(*f.value) {
			continue
		}
		present++
		if !validator.IsValidClockTime(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be a 24h time in HH:MM format",
			})
		}
	}
	if present == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "entry",
			Message: "at least one clock time is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Shift converts a validated request into the domain shift. Blank times are omitted.
func (r *JornadaRequest) Shift() Shift {
	date, _ := time.Parse(DateLayout, r.Date)

	var inputs []ClockTimeInput
	add := func(kind Kind, value *string) {
		if value == nil || validator.IsEmpty(*value) {
			return
		}
		inputs = append(inputs, ClockTimeInput{Kind: kind, TimeOfDay: strings.TrimSpace(*value)})
	}
	add(KindEntry, r.Entry)
	add(KindLunchOut, r.LunchOut)
	add(KindLunchIn, r.LunchIn)
	add(KindExit, r.Exit)

	return Shift{
		EmployeeID:  strings.TrimSpace(r.EmployeeID),
		NominalDate: date,
		Inputs:      inputs,
	}
}

type PunchEventResponse struct {
	Kind          Kind   `json:"kind"`
	EmployeeID    string `json:"employee_id"`
	NominalDate   string `json:"nominal_date"`
	LocalDateTime string `json:"local_date_time"`
	DayOffset     int    `json:"day_offset"`
}

func NewPunchEventResponse(e PunchEvent) PunchEventResponse {
	return PunchEventResponse{
		Kind:          e.Kind,
		EmployeeID:    e.EmployeeID,
		NominalDate:   e.NominalDate.Format(DateLayout),
		LocalDateTime: e.ISOLocal(),
		DayOffset:     e.DayOffset,
	}
}

type JornadaPreviewResponse struct {
	EmployeeID string               `json:"employee_id"`
	Date       string               `json:"date"`
	Events     []PunchEventResponse `json:"events"`
}

type PunchAckResponse struct {
	PunchID       string `json:"punch_id"`
	EmployeeID    string `json:"employee_id"`
	Kind          Kind   `json:"kind"`
	LocalDateTime string `json:"local_date_time"`
}

func NewPunchAckResponse(a PunchAck) PunchAckResponse {
	return PunchAckResponse{
		PunchID:       a.PunchID,
		EmployeeID:    a.EmployeeID,
		Kind:          a.Kind,
		LocalDateTime: a.LocalDateTime,
	}
}

type JornadaSubmitResponse struct {
	EmployeeID string             `json:"employee_id"`
	Date       string             `json:"date"`
	Submitted  []PunchAckResponse `json:"submitted"`
	Pending    []Kind             `json:"pending,omitempty"` // kinds not sent because an earlier one failed
}

// ========================================
// PUNCH CORRECTION DTOs
// ========================================

type CorrectPunchRequest struct {
	PunchID       string `json:"-"`
	EmployeeID    string `json:"employee_id"`
	Kind          Kind   `json:"kind"`
	LocalDateTime string `json:"local_date_time"` // 2006-01-02T15:04[:05]
}

var correctionLayouts = []string{LocalDateTimeLayout, "2006-01-02T15:04"}

// ParseLocalDateTime accepts a zone-less timestamp with or without seconds.
func ParseLocalDateTime(s string) (time.Time, bool) {
	for _, layout := range correctionLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r *CorrectPunchRequest) Validate() error {
	_, err := r.parse()
	return err
}

// Event validates the request and returns the corrected punch. The nominal date of a
// correction is the calendar date of its timestamp.
func (r *CorrectPunchRequest) Event() (PunchEvent, error) {
	local, err := r.parse()
	if err != nil {
		return PunchEvent{}, err
	}
	y, m, d := local.Date()
	return PunchEvent{
		Kind:          r.Kind,
		EmployeeID:    strings.TrimSpace(r.EmployeeID),
		NominalDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		LocalDateTime: local,
	}, nil
}

// parse checks every field and returns the parsed local timestamp.
func (r *CorrectPunchRequest) parse() (time.Time, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.PunchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "punch_id",
			Message: "punch_id is required",
		})
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !r.Kind.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be one of ENTRY, LUNCH_OUT, LUNCH_IN, EXIT",
		})
	}

	local, ok := ParseLocalDateTime(r.LocalDateTime)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "local_date_time",
			Message: "local_date_time must be in YYYY-MM-DDTHH:MM[:SS] format",
		})
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return local, nil
}

// ========================================
// SPREADSHEET IMPORT DTOs
// ========================================

type ImportRowResult struct {
	Row        int    `json:"row"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Submitted  int    `json:"submitted"`
	Error      string `json:"error,omitempty"`
}

type ImportResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Rows      []ImportRowResult `json:"rows"`
}
