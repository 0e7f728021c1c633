package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/config"
)

// aladhanDateLayout is the gregorian.date format returned by the API.
const aladhanDateLayout = "02-01-2006"

var ErrMalformedResponse = errors.New("aladhan: malformed response")

type Aladhan struct {
	baseURL string
	path    string
	timeout time.Duration
	client  *http.Client
}

func NewAladhan(cfg *config.Config) *Aladhan {
	return &Aladhan{
		baseURL: strings.TrimRight(cfg.CalendarBaseURL, "/"),
		path:    "/hijriCalendar",
		timeout: cfg.CalendarTimeout,
		client:  http.DefaultClient,
	}
}

func (a *Aladhan) Name() string {
	return "aladhan"
}

type aladhanDay struct {
	Gregorian struct {
		Date string `json:"date"` // DD-MM-YYYY
	} `json:"gregorian"`
	Hijri struct {
		Day  string `json:"day"`
		Year string `json:"year"`
	} `json:"hijri"`
}

type aladhanResp struct {
	Code   int          `json:"code"`
	Status string       `json:"status"`
	Data   []aladhanDay `json:"data"`
}

func (a *Aladhan) MonthDays(ctx context.Context, month, lunarYear int) ([]Day, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	u, err := url.Parse(a.baseURL + a.path)
	if err != nil {
		return nil, fmt.Errorf("aladhan: bad base url: %w", err)
	}
	q := u.Query()
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(lunarYear))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("aladhan: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("aladhan: %s", resp.Status)
	}

	var payload aladhanResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Code != 0 && payload.Code != http.StatusOK {
		return nil, fmt.Errorf("aladhan: code %d %s", payload.Code, payload.Status)
	}

	out := make([]Day, 0, len(payload.Data))
	for i, d := range payload.Data {
		g, err := time.ParseInLocation(aladhanDateLayout, d.Gregorian.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: day %d date %q", ErrMalformedResponse, i+1, d.Gregorian.Date)
		}
		hd, _ := strconv.Atoi(d.Hijri.Day)
		hy, _ := strconv.Atoi(d.Hijri.Year)
		out = append(out, Day{Gregorian: calendar.DateOf(g), HijriDay: hd, HijriYear: hy})
	}
	return out, nil
}
