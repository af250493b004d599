package pregnancy

import (
	"errors"
	"time"
)

// ErrInvalidDate is returned when an LMP value is missing or not a real calendar date.
var ErrInvalidDate = errors.New("invalid last menstrual period date")

// Gestational week bounds used for clamping and validation.
const (
	MinWeek = 1
	MaxWeek = 42

	// TermWeeks is the standard 40-week pregnancy model the week math is anchored on.
	TermWeeks = 40
)

// ComputeEDD derives the estimated due date from the last menstrual period using
// Naegele's rule: add 7 days, subtract 3 calendar months, add 1 year. The shift is
// calendar-aware rather than a flat 280-day offset, so results can differ by a day
// or two from the day-count model depending on month lengths.
func ComputeEDD(lmp time.Time) (time.Time, error) {
	if lmp.IsZero() {
		return time.Time{}, ErrInvalidDate
	}
	edd := lmp.AddDate(0, 0, 7)
	edd = edd.AddDate(0, -3, 0)
	edd = edd.AddDate(1, 0, 0)
	return edd, nil
}

// ComputeGestationalWeek returns the current week of pregnancy given the due date.
// Weeks until due are counted with a ceiling division so a partial week still counts
// as a full week remaining. The result is clamped to [MinWeek, MaxWeek].
func ComputeGestationalWeek(edd, today time.Time) int {
	days := edd.Sub(today).Hours() / 24
	weeksUntilDue := int(days / 7)
	if days > float64(weeksUntilDue*7) {
		weeksUntilDue++
	}
	week := TermWeeks - weeksUntilDue
	if week < MinWeek {
		return MinWeek
	}
	if week > MaxWeek {
		return MaxWeek
	}
	return week
}
