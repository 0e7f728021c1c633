package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/logger"
)

// PricingConfig is the sub-window of Ramadan, as 1-indexed day offsets, in
// which the surge table applies.
type PricingConfig struct {
	WindowStartDay int `json:"windowStartDay"`
	WindowEndDay   int `json:"windowEndDay"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{WindowStartDay: 18, WindowEndDay: 30}
}

func (c PricingConfig) Validate() error {
	if c.WindowStartDay < 1 || c.WindowEndDay > 30 || c.WindowStartDay > c.WindowEndDay {
		return fmt.Errorf("pricing window %d-%d: need 1 <= start <= end <= 30", c.WindowStartDay, c.WindowEndDay)
	}
	return nil
}

func (c PricingConfig) includes(offset int) bool {
	return offset >= c.WindowStartDay && offset <= c.WindowEndDay
}

// PeriodResolver is what the classifier needs from the calendar side.
type PeriodResolver interface {
	Resolve(ctx context.Context, lunarYear int) (calendar.Period, error)
}

// Classifier decides whether a date falls inside Ramadan or its surge window.
// Any resolution failure is answered with false.
type Classifier struct {
	resolver PeriodResolver
	log      zerolog.Logger
}

func NewClassifier(resolver PeriodResolver, log zerolog.Logger) *Classifier {
	return &Classifier{
		resolver: resolver,
		log:      logger.Component(log, "pricing_classifier"),
	}
}

func (c *Classifier) period(ctx context.Context, date time.Time) (calendar.Period, bool) {
	year := calendar.ApproximateLunarYear(date)
	p, err := c.resolver.Resolve(ctx, year)
	if err != nil {
		c.log.Warn().Err(err).Str("date", calendar.FormatDate(date)).Msg("Cannot determine Ramadan period, using standard pricing")
		return calendar.Period{}, false
	}
	return p, true
}

// IsInPricingWindow reports whether date is on a surge day. The offset must
// be inside cfg and the date inside the resolved period; the second check
// stops an offset taken against the wrong Hijri year from matching.
func (c *Classifier) IsInPricingWindow(ctx context.Context, date time.Time, cfg PricingConfig) bool {
	date = calendar.DateOf(date)
	p, ok := c.period(ctx, date)
	if !ok {
		return false
	}
	return cfg.includes(p.DayOffset(date)) && p.Contains(date)
}

// IsInReligiousMonth reports whether date is anywhere in Ramadan.
func (c *Classifier) IsInReligiousMonth(ctx context.Context, date time.Time) bool {
	date = calendar.DateOf(date)
	p, ok := c.period(ctx, date)
	if !ok {
		return false
	}
	return p.Contains(date)
}
