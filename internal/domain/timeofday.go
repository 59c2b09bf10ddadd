package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight.
// It is stored as a smallint column and compared with plain integer
// ordering, which keeps the working-window checks trivial.
type TimeOfDay int16

const (
	// ClinicOpens and ClinicCloses bound every booking and every
	// doctor's working window, [07:00, 23:59].
	ClinicOpens  TimeOfDay = 7 * 60
	ClinicCloses TimeOfDay = 23*60 + 59
)

var errInvalidTimeOfDay = errors.New("time of day must be HH:MM")

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" wall-clock strings, e.g. "09:30".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, errInvalidTimeOfDay
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, errInvalidTimeOfDay
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, errInvalidTimeOfDay
	}
	return NewTimeOfDay(hour, minute), nil
}

// TimeOfDayFrom extracts the wall-clock component of t.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// SecondOfDay converts t to seconds since midnight for comparison
// against timestamps that carry a seconds component.
func (t TimeOfDay) SecondOfDay() int { return int(t) * 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return errInvalidTimeOfDay
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
