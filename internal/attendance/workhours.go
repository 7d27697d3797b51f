package attendance

import (
	"math"
	"time"
)

// halfDayThreshold is the worked-hours mark below which a completed day
// is recorded as Half-day. Exactly the threshold still counts as Present.
const halfDayThreshold = 4.0

// CalculateWorkHours returns the span between check-in and check-out in
// hours, rounded half-up to two decimals. Inverted spans collapse to 0.
func CalculateWorkHours(checkIn, checkOut time.Time) float64 {
	if checkOut.Before(checkIn) {
		return 0
	}
	hours := checkOut.Sub(checkIn).Hours()
	return math.Round(hours*100) / 100
}

// DeriveStatus maps worked hours onto Present or Half-day.
func DeriveStatus(workHours float64) string {
	if workHours < halfDayThreshold {
		return StatusHalfDay
	}
	return StatusPresent
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekBounds returns the ISO week (Monday through Sunday) containing ref.
func WeekBounds(ref time.Time) (time.Time, time.Time) {
	day := DateOnly(ref)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := day.AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}
