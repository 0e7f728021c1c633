package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/catalog"
	"github.com/you/go-ramadan-transfers/internal/service"
)

type priceResponse struct {
	Available bool         `json:"available"`
	VehicleID string       `json:"vehicle_id,omitempty"`
	ServiceID string       `json:"service_id,omitempty"`
	Date      string       `json:"date,omitempty"`
	Price     int64        `json:"price"`
	Tier      service.Tier `json:"tier,omitempty"`
}

type quoteResponse struct {
	service.PricedQuote
	VehicleName string `json:"vehicle_name"`
	ServiceName string `json:"service_name"`
}

type surgeResponse struct {
	Date    string `json:"date"`
	Surge   bool   `json:"surge"`
	Ramadan bool   `json:"ramadan"`
}

type periodResponse struct {
	LunarYear int    `json:"lunar_year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

func toPeriodResponse(p calendar.Period) periodResponse {
	return periodResponse{
		LunarYear: p.LunarYear,
		StartDate: calendar.FormatDate(p.Start),
		EndDate:   calendar.FormatDate(p.End),
		Days:      p.Days(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// dateParam parses the named YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (time.Time, bool) {
	d, err := calendar.ParseDate(r.URL.Query().Get(name))
	return d, err == nil
}

func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func VehiclesHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.Vehicles)
	}
}

func CategoriesHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.Categories)
	}
}

// ServicesHandler lists the service catalog, optionally narrowed with
// ?category=.
func ServicesHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c := r.URL.Query().Get("category"); c != "" {
			writeJSON(w, http.StatusOK, cat.ServicesByCategory(c))
			return
		}
		writeJSON(w, http.StatusOK, cat.Services)
	}
}

func VehicleServicesHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.AvailableServices(chi.URLParam(r, "id")))
	}
}

func PriceHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		vehicle, svcID := q.Get("vehicle"), q.Get("service")
		d, ok := dateParam(r, "date")
		if vehicle == "" || svcID == "" || !ok {
			http.Error(w, "vehicle, service and date (YYYY-MM-DD) are required", http.StatusBadRequest)
			return
		}
		quote, err := svc.Quote(r.Context(), vehicle, svcID, d)
		if errors.Is(err, service.ErrPriceNotDefined) {
			writeJSON(w, http.StatusNotFound, map[string]bool{"available": false})
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, priceResponse{
			Available: true,
			VehicleID: quote.VehicleID,
			ServiceID: quote.ServiceID,
			Date:      quote.Date,
			Price:     quote.Price,
			Tier:      quote.Tier,
		})
	}
}

func quoteFor(ctx context.Context, svc *service.PricingService, vehicle, svcID string, d time.Time) (quoteResponse, error) {
	q, err := svc.Quote(ctx, vehicle, svcID, d)
	if err != nil {
		return quoteResponse{}, err
	}
	resp := quoteResponse{PricedQuote: q}
	if v, ok := svc.Catalog().VehicleByID(vehicle); ok {
		resp.VehicleName = v.Name
	}
	if s, ok := svc.Catalog().ServiceByID(svcID); ok {
		resp.ServiceName = s.Name
	}
	return resp, nil
}

func QuoteHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		d, ok := dateParam(r, "date")
		if q.Get("vehicle") == "" || q.Get("service") == "" || !ok {
			http.Error(w, "vehicle, service and date (YYYY-MM-DD) are required", http.StatusBadRequest)
			return
		}
		resp, err := quoteFor(r.Context(), svc, q.Get("vehicle"), q.Get("service"), d)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// TierHandler answers the tier for a trip spanning every ?date= given.
func TierHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query()["date"]
		if len(raw) == 0 {
			http.Error(w, "at least one date is required", http.StatusBadRequest)
			return
		}
		dates := make([]time.Time, 0, len(raw))
		for _, s := range raw {
			d, err := calendar.ParseDate(s)
			if err != nil {
				http.Error(w, "bad date "+strconv.Quote(s), http.StatusBadRequest)
				return
			}
			dates = append(dates, d)
		}
		writeJSON(w, http.StatusOK, map[string]service.Tier{"tier": svc.PriceTierForDateRange(r.Context(), dates)})
	}
}

func SurgeHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := dateParam(r, "date")
		if !ok {
			http.Error(w, "date (YYYY-MM-DD) is required", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, surgeResponse{
			Date:    calendar.FormatDate(d),
			Surge:   svc.IsSurgeDate(r.Context(), d),
			Ramadan: svc.IsRamadanDate(r.Context(), d),
		})
	}
}

func PricingWindowHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.PricingWindowConfig())
	}
}

// RamadanHandler shows the Ramadan dates for ?year=, the current year when
// omitted.
func RamadanHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := time.Now().Year()
		if s := r.URL.Query().Get("year"); s != "" {
			y, err := strconv.Atoi(s)
			if err != nil || y < 1900 || y > 2200 {
				http.Error(w, "bad year", http.StatusBadRequest)
				return
			}
			year = y
		}
		p, err := svc.RamadanPeriod(r.Context(), year)
		if err != nil {
			http.Error(w, "ramadan dates unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, toPeriodResponse(p))
	}
}

func CacheSummaryHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make(map[string]periodResponse)
		for year, p := range svc.CacheSummary(r.Context()) {
			out[strconv.Itoa(year)] = toPeriodResponse(p)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func ClearCacheHandler(svc *service.PricingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCache(r.Context()); err != nil {
			http.Error(w, "cache clear failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
