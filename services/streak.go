package services

import "time"

// DayDate truncates t to UTC midnight so streak math always compares whole
// calendar days, never clock times.
func DayDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference to - from (truncated, not rounded)
func daysBetween(from, to time.Time) int {
	return int(DayDate(to).Sub(DayDate(from)).Hours() / 24)
}

// ComputeStreak returns the new current streak after a walk on walkedOn.
//
//   - first walk ever → 1
//   - exactly the next calendar day → prev + 1
//   - same calendar day → prev (multiple walks on one day never inflate the streak)
//   - a gap of 2+ days → reset to 1
//   - backdated (earlier than the last recorded walk) → prev unchanged; an
//     out-of-order entry is history, it neither extends nor breaks the streak
func ComputeStreak(prevStreak int, prevLast *time.Time, walkedOn time.Time) int {
	if prevLast == nil {
		return 1
	}
	switch diff := daysBetween(*prevLast, walkedOn); {
	case diff == 0:
		return prevStreak
	case diff == 1:
		return prevStreak + 1
	case diff < 0:
		return prevStreak
	default:
		return 1
	}
}
