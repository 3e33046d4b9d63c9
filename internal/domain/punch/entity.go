package punch

import (
	"time"
)

// Kind identifies which clock event a time belongs to.
type Kind string

const (
	KindEntry    Kind = "ENTRY"
	KindLunchOut Kind = "LUNCH_OUT"
	KindLunchIn  Kind = "LUNCH_IN"
	KindExit     Kind = "EXIT"
)

// KindOrder is the fixed shift order. Submission always follows it, even when
// two kinds resolve to the same timestamp.
var KindOrder = []Kind{KindEntry, KindLunchOut, KindLunchIn, KindExit}

// Rank returns the position of k in KindOrder, or -1 for unknown kinds.
func (k Kind) Rank() int {
	for i, kind := range KindOrder {
		if kind == k {
			return i
		}
	}
	return -1
}

func (k Kind) IsValid() bool {
	return k.Rank() >= 0
}

const (
	DateLayout          = "2006-01-02"
	LocalDateTimeLayout = "2006-01-02T15:04:05"
)

// ClockTimeInput is a user-entered time of day with no date attached.
type ClockTimeInput struct {
	Kind      Kind
	TimeOfDay string // HH:MM
}

// Shift is one manual jornada: every clock time entered for an employee on a nominal date.
type Shift struct {
	EmployeeID  string
	NominalDate time.Time
	Inputs      []ClockTimeInput
}

// ResolvedClockTime is a ClockTimeInput placed on the absolute timeline.
type ResolvedClockTime struct {
	Kind      Kind
	TimeOfDay string
	Minutes   int // minutes since midnight
	DayOffset int // 0 or 1, relative to the nominal date
}

// PunchEvent is a single clock event ready for submission.
type PunchEvent struct {
	Kind          Kind
	EmployeeID    string
	NominalDate   time.Time
	LocalDateTime time.Time // wall clock, zone is meaningless
	DayOffset     int
}

// ISOLocal renders the wall-clock timestamp without a zone, as the HR API expects.
func (e PunchEvent) ISOLocal() string {
	return e.LocalDateTime.Format(LocalDateTimeLayout)
}

// PunchAck is the HR API acknowledgement of a submitted or corrected punch.
type PunchAck struct {
	PunchID       string
	EmployeeID    string
	Kind          Kind
	LocalDateTime string
}
