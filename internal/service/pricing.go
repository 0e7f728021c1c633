package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/catalog"
	"github.com/you/go-ramadan-transfers/internal/logger"
	"golang.org/x/sync/errgroup"
)

type Tier string

const (
	TierStandard Tier = "standard"
	TierSurge    Tier = "surge"
)

// maxRangeLookups bounds concurrent classifications for one date range.
const maxRangeLookups = 4

var ErrPriceNotDefined = errors.New("price not defined for vehicle and service")

// errSurgeFound stops the remaining range lookups once one date is surge.
var errSurgeFound = errors.New("surge date found")

// PricedQuote is one resolved price. It is recomputed per query.
type PricedQuote struct {
	VehicleID string `json:"vehicle_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
	Tier      Tier   `json:"tier"`
	Surge     bool   `json:"surge"`
}

// PricingService is what the booking UI calls: it picks the standard or surge
// table by date and resolves prices from the catalog.
type PricingService struct {
	catalog    *catalog.Catalog
	resolver   *Resolver
	classifier *Classifier
	cfg        PricingConfig
	log        zerolog.Logger
}

func NewPricingService(cat *catalog.Catalog, resolver *Resolver, cfg PricingConfig, log zerolog.Logger) (*PricingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PricingService{
		catalog:    cat,
		resolver:   resolver,
		classifier: NewClassifier(resolver, log),
		cfg:        cfg,
		log:        logger.Component(log, "pricing"),
	}, nil
}

func (s *PricingService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *PricingService) PricingWindowConfig() PricingConfig {
	return s.cfg
}

func (s *PricingService) IsSurgeDate(ctx context.Context, date time.Time) bool {
	return s.classifier.IsInPricingWindow(ctx, date, s.cfg)
}

// IsRamadanDate reports whether date is anywhere in Ramadan, not just the
// surge window.
func (s *PricingService) IsRamadanDate(ctx context.Context, date time.Time) bool {
	return s.classifier.IsInReligiousMonth(ctx, date)
}

func (s *PricingService) TierFor(ctx context.Context, date time.Time) Tier {
	if s.IsSurgeDate(ctx, date) {
		return TierSurge
	}
	return TierStandard
}

func (s *PricingService) table(t Tier) catalog.PriceTable {
	if t == TierSurge {
		return s.catalog.Surge
	}
	return s.catalog.Standard
}

// PriceFor returns the price for the triple, or false when the selected
// table has no entry for the pair.
func (s *PricingService) PriceFor(ctx context.Context, vehicleID, serviceID string, date time.Time) (int64, bool) {
	return s.table(s.TierFor(ctx, date)).Lookup(vehicleID, serviceID)
}

// Quote is PriceFor with the tier and display fields filled in.
func (s *PricingService) Quote(ctx context.Context, vehicleID, serviceID string, date time.Time) (PricedQuote, error) {
	tier := s.TierFor(ctx, date)
	price, ok := s.table(tier).Lookup(vehicleID, serviceID)
	if !ok {
		return PricedQuote{}, ErrPriceNotDefined
	}
	return PricedQuote{
		VehicleID: vehicleID,
		ServiceID: serviceID,
		Date:      calendar.FormatDate(calendar.DateOf(date)),
		Price:     price,
		Currency:  s.catalog.Currency,
		Formatted: catalog.FormatPrice(price),
		Tier:      tier,
		Surge:     tier == TierSurge,
	}, nil
}

// AvailableServices lists the services the standard table prices for
// vehicleID, in catalog order. Availability does not depend on the date.
func (s *PricingService) AvailableServices(vehicleID string) []catalog.Service {
	out := []catalog.Service{}
	row, ok := s.catalog.Standard[vehicleID]
	if !ok {
		return out
	}
	for _, svc := range s.catalog.Services {
		if _, ok := row[svc.ID]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// PriceTierForDateRange is surge when any of dates is a surge date.
func (s *PricingService) PriceTierForDateRange(ctx context.Context, dates []time.Time) Tier {
	var surge atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRangeLookups)
	for _, d := range dates {
		d := d
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if s.classifier.IsInPricingWindow(gctx, d, s.cfg) {
				surge.Store(true)
				return errSurgeFound
			}
			return nil
		})
	}
	_ = g.Wait()

	if surge.Load() {
		return TierSurge
	}
	return TierStandard
}

// RamadanPeriod returns the period for a Gregorian year, for display.
func (s *PricingService) RamadanPeriod(ctx context.Context, gregorianYear int) (calendar.Period, error) {
	return s.resolver.PeriodForGregorianYear(ctx, gregorianYear)
}

func (s *PricingService) CacheSummary(ctx context.Context) map[int]calendar.Period {
	return s.resolver.Summary(ctx)
}

// ClearCache drops every cached period, forcing fresh lookups.
func (s *PricingService) ClearCache(ctx context.Context) error {
	if err := s.resolver.ClearCache(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Cache clear failed")
		return err
	}
	return nil
}
