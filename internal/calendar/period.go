// Package calendar holds the Hijri period types and the date arithmetic used
// to place a Gregorian booking date inside Ramadan.
package calendar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RamadanMonth is the Hijri month number of Ramadan.
const RamadanMonth = 9

const (
	minSpanDays = 28
	maxSpanDays = 30
	day         = 24 * time.Hour
)

var ErrInvalidPeriod = errors.New("invalid calendar period")

// Period is the Gregorian span of Ramadan for one Hijri year.
// Start is day 1 of the month, End the last day. Both are civil dates at
// midnight UTC.
type Period struct {
	LunarYear int
	Start     time.Time
	End       time.Time
}

// NewPeriod normalises start and end to civil dates and validates the span.
func NewPeriod(lunarYear int, start, end time.Time) (Period, error) {
	p := Period{LunarYear: lunarYear, Start: DateOf(start), End: DateOf(end)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, FormatDate(p.End), FormatDate(p.Start))
	}
	// span counts both ends, so a 30-day month is End-Start = 29 days
	span := int(p.End.Sub(p.Start)/day) + 1
	if span < minSpanDays || span > maxSpanDays {
		return fmt.Errorf("%w: span of %d days", ErrInvalidPeriod, span)
	}
	return nil
}

// DayOffset is the 1-indexed day number of d inside the period.
// Dates before Start give zero or negative values.
func (p Period) DayOffset(d time.Time) int {
	diff := DateOf(d).Sub(p.Start).Hours() / 24
	return int(math.Ceil(diff)) + 1
}

// Contains reports whether d lies in [Start, End].
func (p Period) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns the number of days covered by the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start)/day) + 1
}
