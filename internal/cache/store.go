package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/logger"
)

const (
	// Key is the storage key of the serialised entry.
	Key = "ramadan_cache"
	// DefaultDuration is how long an entry stays fresh after its last write.
	DefaultDuration = 30 * 24 * time.Hour
)

// Entry is the whole cache: every resolved period plus one timestamp that
// gates all of them.
type Entry struct {
	PeriodsByYear map[int]calendar.Period
	LastUpdated   time.Time
}

func NewEntry(now time.Time) Entry {
	return Entry{PeriodsByYear: make(map[int]calendar.Period), LastUpdated: now}
}

func (e Entry) Period(lunarYear int) (calendar.Period, bool) {
	p, ok := e.PeriodsByYear[lunarYear]
	return p, ok
}

// Put records p and bumps LastUpdated, which refreshes every cached year.
func (e *Entry) Put(p calendar.Period, now time.Time) {
	if e.PeriodsByYear == nil {
		e.PeriodsByYear = make(map[int]calendar.Period)
	}
	e.PeriodsByYear[p.LunarYear] = p
	e.LastUpdated = now
}

type wirePeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Year      int    `json:"year"`
}

type wireEntry struct {
	PeriodsByYear map[string]wirePeriod `json:"periodsByYear"`
	LastUpdated   int64                 `json:"lastUpdated"` // unix millis
}

// Encode serialises e to the JSON shape kept in storage.
func Encode(e Entry) ([]byte, error) {
	w := wireEntry{
		PeriodsByYear: make(map[string]wirePeriod, len(e.PeriodsByYear)),
		LastUpdated:   e.LastUpdated.UnixMilli(),
	}
	for year, p := range e.PeriodsByYear {
		w.PeriodsByYear[strconv.Itoa(year)] = wirePeriod{
			StartDate: calendar.FormatDate(p.Start),
			EndDate:   calendar.FormatDate(p.End),
			Year:      p.LunarYear,
		}
	}
	return json.Marshal(w)
}

// Decode parses stored JSON. Any bad period fails the whole entry.
func Decode(data []byte) (Entry, error) {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return Entry{}, err
	}
	e := Entry{
		PeriodsByYear: make(map[int]calendar.Period, len(w.PeriodsByYear)),
		LastUpdated:   time.UnixMilli(w.LastUpdated),
	}
	for key, wp := range w.PeriodsByYear {
		year, err := strconv.Atoi(key)
		if err != nil {
			return Entry{}, fmt.Errorf("bad year key %q", key)
		}
		if wp.Year != year {
			return Entry{}, fmt.Errorf("year key %d holds period for %d", year, wp.Year)
		}
		start, err := calendar.ParseDate(wp.StartDate)
		if err != nil {
			return Entry{}, err
		}
		end, err := calendar.ParseDate(wp.EndDate)
		if err != nil {
			return Entry{}, err
		}
		p, err := calendar.NewPeriod(year, start, end)
		if err != nil {
			return Entry{}, err
		}
		e.PeriodsByYear[year] = p
	}
	return e, nil
}

// Store is the time-boxed cache of resolved periods.
type Store struct {
	kv       KV
	duration time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(kv KV, duration time.Duration, log zerolog.Logger, opts ...Option) *Store {
	if duration <= 0 {
		duration = DefaultDuration
	}
	s := &Store{
		kv:       kv,
		duration: duration,
		now:      time.Now,
		log:      logger.Component(log, "ramadan_cache"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Now() time.Time {
	return s.now()
}

// Load returns the stored entry while it is fresh. Missing, unreadable,
// corrupt or expired data all come back as a fresh empty entry.
func (s *Store) Load(ctx context.Context) Entry {
	now := s.now()
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Msg("Failed to read cache, treating as empty")
		}
		return NewEntry(now)
	}

	e, err := Decode([]byte(raw))
	if err != nil {
		s.log.Warn().Err(err).Msg("Corrupt cache, treating as empty")
		return NewEntry(now)
	}
	if age := now.Sub(e.LastUpdated); age >= s.duration {
		s.log.Debug().Dur("age", age).Int("years", len(e.PeriodsByYear)).Msg("Cache expired")
		return NewEntry(now)
	}
	return e
}

// Save persists e. Failures are logged; the next lookup simply re-fetches.
func (s *Store) Save(ctx context.Context, e Entry) {
	data, err := Encode(e)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to encode cache")
		return
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		s.log.Warn().Err(err).Msg("Failed to save cache")
	}
}

// Clear drops the stored entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, Key); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.log.Info().Msg("Cache cleared")
	return nil
}
