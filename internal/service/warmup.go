package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/logger"
)

const warmupTimeout = 30 * time.Second

// WarmupJob resolves this and next Hijri year ahead of time so the first
// customer lookup of a season is served from cache.
type WarmupJob struct {
	resolver *Resolver
	now      func() time.Time
	log      zerolog.Logger
}

func NewWarmupJob(resolver *Resolver, log zerolog.Logger) *WarmupJob {
	return &WarmupJob{
		resolver: resolver,
		now:      time.Now,
		log:      logger.Component(log, "ramadan_warmup"),
	}
}

func (j *WarmupJob) Name() string {
	return "ramadan_warmup"
}

func (j *WarmupJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	year := calendar.ApproximateLunarYear(j.now())
	var errs []error
	for _, y := range []int{year, year + 1} {
		p, err := j.resolver.Resolve(ctx, y)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		j.log.Debug().Int("lunar_year", y).Str("start", calendar.FormatDate(p.Start)).Msg("Period warm")
	}
	return errors.Join(errs...)
}
