package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/go-ramadan-transfers/internal/calendar"
)

var nopLog = zerolog.New(nil).Level(zerolog.Disabled)

func period(t *testing.T, year int, start, end string) calendar.Period {
	t.Helper()
	s, err := calendar.ParseDate(start)
	require.NoError(t, err)
	e, err := calendar.ParseDate(end)
	require.NoError(t, err)
	p, err := calendar.NewPeriod(year, s, e)
	require.NoError(t, err)
	return p
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingKV) Set(context.Context, string, string) error   { return f.err }
func (f failingKV) Remove(context.Context, string) error        { return f.err }

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	s := NewStore(NewMemoryKV(), DefaultDuration, nopLog, WithClock(c.now))

	e := s.Load(ctx)
	require.Empty(t, e.PeriodsByYear)

	e.Put(period(t, 1446, "2025-03-01", "2025-03-30"), c.t)
	e.Put(period(t, 1447, "2026-02-18", "2026-03-19"), c.t)
	s.Save(ctx, e)

	c.t = c.t.Add(29 * 24 * time.Hour)
	got := s.Load(ctx)
	assert.Equal(t, e.PeriodsByYear, got.PeriodsByYear)
	assert.Equal(t, e.LastUpdated.UnixMilli(), got.LastUpdated.UnixMilli())
}

func TestStoreGlobalExpiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)}
	s := NewStore(NewMemoryKV(), DefaultDuration, nopLog, WithClock(c.now))

	e := s.Load(ctx)
	e.Put(period(t, 1446, "2025-03-01", "2025-03-30"), c.t)
	s.Save(ctx, e)

	// exactly 30 days after the last write every year is gone at once
	c.t = c.t.Add(DefaultDuration)
	got := s.Load(ctx)
	assert.Empty(t, got.PeriodsByYear)
	assert.Equal(t, c.t, got.LastUpdated)
}

func TestStoreLaterWriteRefreshesAllYears(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(NewMemoryKV(), DefaultDuration, nopLog, WithClock(c.now))

	e := s.Load(ctx)
	e.Put(period(t, 1446, "2025-03-01", "2025-03-30"), c.t)
	s.Save(ctx, e)

	c.t = c.t.Add(20 * 24 * time.Hour)
	e = s.Load(ctx)
	e.Put(period(t, 1447, "2026-02-18", "2026-03-19"), c.t)
	s.Save(ctx, e)

	c.t = c.t.Add(20 * 24 * time.Hour)
	got := s.Load(ctx)
	_, ok := got.Period(1446)
	assert.True(t, ok, "1446 is 40 days old but rides on the newer timestamp")
	_, ok = got.Period(1447)
	assert.True(t, ok)
}

func TestStoreCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"bad date", `{"periodsByYear":{"1446":{"startDate":"March","endDate":"2025-03-30","year":1446}},"lastUpdated":1}`},
		{"key mismatch", `{"periodsByYear":{"1446":{"startDate":"2025-03-01","endDate":"2025-03-30","year":1447}},"lastUpdated":1}`},
		{"inverted", `{"periodsByYear":{"1446":{"startDate":"2025-03-30","endDate":"2025-03-01","year":1446}},"lastUpdated":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(ctx, Key, tt.raw))
			s := NewStore(kv, DefaultDuration, nopLog, WithClock(func() time.Time { return time.UnixMilli(2) }))
			assert.Empty(t, s.Load(ctx).PeriodsByYear)
		})
	}
}

func TestStoreStorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingKV{err: errors.New("quota exceeded")}, DefaultDuration, nopLog)

	e := s.Load(ctx)
	require.NotNil(t, e.PeriodsByYear)
	e.Put(period(t, 1446, "2025-03-01", "2025-03-30"), time.Now())
	s.Save(ctx, e) // must not panic

	require.Error(t, s.Clear(ctx))
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewStore(kv, DefaultDuration, nopLog)

	e := s.Load(ctx)
	e.Put(period(t, 1446, "2025-03-01", "2025-03-30"), s.Now())
	s.Save(ctx, e)
	require.Len(t, s.Load(ctx).PeriodsByYear, 1)

	require.NoError(t, s.Clear(ctx))
	_, err := kv.Get(ctx, Key)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Load(ctx).PeriodsByYear)
}

func TestEncodeShape(t *testing.T) {
	e := NewEntry(time.UnixMilli(1740787200000))
	e.PeriodsByYear[1446] = period(t, 1446, "2025-03-01", "2025-03-30")

	data, err := Encode(e)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, float64(1740787200000), generic["lastUpdated"])

	years := generic["periodsByYear"].(map[string]interface{})
	p := years["1446"].(map[string]interface{})
	assert.Equal(t, "2025-03-01", p["startDate"])
	assert.Equal(t, "2025-03-30", p["endDate"])
	assert.Equal(t, float64(1446), p["year"])
}
