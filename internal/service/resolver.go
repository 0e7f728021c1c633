package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/cache"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/logger"
	"github.com/you/go-ramadan-transfers/internal/providers"
	"golang.org/x/sync/singleflight"
)

// ramadanListingDays is how many day records a usable month listing must have.
const ramadanListingDays = 30

// sharedFetchTimeout bounds a de-duplicated fetch, which no single caller owns.
const sharedFetchTimeout = 30 * time.Second

var ErrCalendarUnavailable = errors.New("ramadan calendar unavailable")

// Resolver finds the Gregorian span of Ramadan for a Hijri year, going to the
// calendar provider only on a cache miss.
type Resolver struct {
	provider providers.CalendarProvider
	store    *cache.Store
	log      zerolog.Logger
	inflight *singleflight.Group
}

// NewResolver builds a resolver. With dedupe set, concurrent misses for the
// same year share one provider call; otherwise each miss fetches on its own.
func NewResolver(provider providers.CalendarProvider, store *cache.Store, log zerolog.Logger, dedupe bool) *Resolver {
	r := &Resolver{
		provider: provider,
		store:    store,
		log:      logger.Component(log, "ramadan_resolver"),
	}
	if dedupe {
		r.inflight = &singleflight.Group{}
	}
	return r
}

// Resolve returns the period for lunarYear or an error wrapping
// ErrCalendarUnavailable.
func (r *Resolver) Resolve(ctx context.Context, lunarYear int) (calendar.Period, error) {
	entry := r.store.Load(ctx)
	if p, ok := entry.Period(lunarYear); ok {
		return p, nil
	}

	if r.inflight == nil {
		return r.fetch(ctx, lunarYear, entry)
	}
	// The shared fetch outlives any one caller; each caller still stops
	// waiting when its own ctx is done.
	ch := r.inflight.DoChan(strconv.Itoa(lunarYear), func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return r.fetch(fctx, lunarYear, entry)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return calendar.Period{}, res.Err
		}
		return res.Val.(calendar.Period), nil
	case <-ctx.Done():
		return calendar.Period{}, fmt.Errorf("%w: lunar year %d: %w", ErrCalendarUnavailable, lunarYear, ctx.Err())
	}
}

func (r *Resolver) fetch(ctx context.Context, lunarYear int, entry cache.Entry) (calendar.Period, error) {
	start := time.Now()
	days, err := r.provider.MonthDays(ctx, calendar.RamadanMonth, lunarYear)
	if err != nil {
		r.log.Warn().Err(err).Str("provider", r.provider.Name()).Int("lunar_year", lunarYear).Msg("Calendar fetch failed")
		return calendar.Period{}, fmt.Errorf("%w: lunar year %d: %w", ErrCalendarUnavailable, lunarYear, err)
	}
	if len(days) < ramadanListingDays {
		r.log.Warn().Int("days", len(days)).Int("lunar_year", lunarYear).Msg("Incomplete Ramadan listing")
		return calendar.Period{}, fmt.Errorf("%w: lunar year %d: %d days listed", ErrCalendarUnavailable, lunarYear, len(days))
	}

	p, err := calendar.NewPeriod(lunarYear, days[0].Gregorian, days[ramadanListingDays-1].Gregorian)
	if err != nil {
		r.log.Warn().Err(err).Int("lunar_year", lunarYear).Msg("Provider returned an unusable period")
		return calendar.Period{}, fmt.Errorf("%w: %w", ErrCalendarUnavailable, err)
	}

	entry.Put(p, r.store.Now())
	r.store.Save(ctx, entry)

	r.log.Info().
		Int("lunar_year", lunarYear).
		Str("start", calendar.FormatDate(p.Start)).
		Str("end", calendar.FormatDate(p.End)).
		Dur("took", time.Since(start)).
		Msg("Resolved Ramadan period")
	return p, nil
}

// PeriodForGregorianYear resolves the Ramadan that the approximation assigns
// to January 1st of year.
func (r *Resolver) PeriodForGregorianYear(ctx context.Context, year int) (calendar.Period, error) {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return r.Resolve(ctx, calendar.ApproximateLunarYear(jan1))
}

// Summary lists the periods currently held fresh in the cache.
func (r *Resolver) Summary(ctx context.Context) map[int]calendar.Period {
	return r.store.Load(ctx).PeriodsByYear
}

func (r *Resolver) ClearCache(ctx context.Context) error {
	return r.store.Clear(ctx)
}
