package providers

import (
	"context"
	"time"
)

// Day is one entry of a Hijri month listing.
type Day struct {
	Gregorian time.Time `json:"gregorian"`
	HijriDay  int       `json:"hijri_day"`
	HijriYear int       `json:"hijri_year"`
}

// CalendarProvider lists the days of a Hijri month in order.
type CalendarProvider interface {
	Name() string
	MonthDays(ctx context.Context, month, lunarYear int) ([]Day, error)
}
