package punch

import (
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
)

// Infer places each clock time of a shift on the absolute timeline by assigning a day offset
// relative to the nominal date.
//
// ENTRY is the anchor at offset 0. Every other present kind is compared with the nearest present
// predecessor in kind order: it keeps the predecessor's offset, plus one if its time of day is
// strictly earlier. Equal times stay on the same day. The result is ordered by kind.
//
// With LUNCH_OUT present and LUNCH_IN missing, EXIT is compared with LUNCH_OUT, not ENTRY: an
// exit earlier in the day than the lunch out cannot follow it on the same day.
func Infer(inputs []punch.ClockTimeInput) ([]punch.ResolvedClockTime, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	byKind := make(map[punch.Kind]punch.ResolvedClockTime, len(inputs))
	for _, in := range inputs {
		if !in.Kind.IsValid() {
			return nil, fmt.Errorf("%w: %q", punch.ErrInvalidKind, in.Kind)
		}
		if _, dup := byKind[in.Kind]; dup {
			return nil, fmt.Errorf("%w: %s", punch.ErrDuplicateKind, in.Kind)
		}
		minutes, err := validator.ParseClockTime(in.TimeOfDay)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", punch.ErrInvalidClockTime, in.Kind, in.TimeOfDay)
		}
		byKind[in.Kind] = punch.ResolvedClockTime{
			Kind:      in.Kind,
			TimeOfDay: fmt.Sprintf("%02d:%02d", minutes/60, minutes%60),
			Minutes:   minutes,
		}
	}

	if _, ok := byKind[punch.KindEntry]; !ok {
		return nil, punch.ErrMissingRequiredField
	}

	resolved := make([]punch.ResolvedClockTime, 0, len(byKind))
	for _, kind := range punch.KindOrder {
		current, ok := byKind[kind]
		if !ok {
			continue
		}
		if n := len(resolved); n > 0 {
			prev := resolved[n-1]
			current.DayOffset = prev.DayOffset
			if current.Minutes < prev.Minutes {
				current.DayOffset++
			}
		}
		if current.DayOffset > 1 {
			return nil, fmt.Errorf("%w: %s at %s", punch.ErrShiftSpansMultipleDays, current.Kind, current.TimeOfDay)
		}
		resolved = append(resolved, current)
	}

	return resolved, nil
}
