package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/you/go-ramadan-transfers/internal/providers"
)

// ProviderMock serves fixed Ramadan listings keyed by Hijri year.
type ProviderMock struct {
	name            string
	starts          map[int]time.Time
	days            int
	delay           time.Duration
	errorOutMessage *string
	callCount       *int32
}

func (p ProviderMock) Name() string {
	return p.name
}

func (p ProviderMock) MonthDays(ctx context.Context, month, lunarYear int) ([]providers.Day, error) {
	if p.callCount != nil {
		atomic.AddInt32(p.callCount, 1)
	}
	if p.errorOutMessage != nil {
		return nil, errors.New(p.Name() + ": " + *p.errorOutMessage)
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	start, ok := p.starts[lunarYear]
	if !ok {
		return nil, nil
	}
	n := p.days
	if n == 0 {
		n = 30
	}
	out := make([]providers.Day, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, providers.Day{Gregorian: start.AddDate(0, 0, i), HijriDay: i + 1, HijriYear: lunarYear})
	}
	return out, nil
}
