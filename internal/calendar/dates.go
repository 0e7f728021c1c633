package calendar

import (
	"math"
	"time"
)

// DateLayout is the ISO date form used on the wire and in the cache.
const DateLayout = "2006-01-02"

// hijriEpochYear and hijriYearRatio drive the approximate conversion.
// 1.030684 is the ratio of a solar year to a lunar year.
const (
	hijriEpochYear = 622
	hijriYearRatio = 1.030684
)

// DateOf drops the clock part of t, keeping its calendar day in t's own
// location, and returns that day at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ApproximateLunarYear guesses the Hijri year a Gregorian date belongs to:
//
//	floor((year - 622) * 1.030684 + month0/12)
//
// month0 is the zero-based month (January = 0). The result can be one year off
// near a Hijri new year; the classifier's clamp against the resolved period
// keeps that from producing a false surge.
func ApproximateLunarYear(t time.Time) int {
	month0 := float64(t.Month() - 1)
	return int(math.Floor(float64(t.Year()-hijriEpochYear)*hijriYearRatio + month0/12))
}
