package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/you/go-ramadan-transfers/internal/calendar"
	"github.com/you/go-ramadan-transfers/internal/logger"
	"github.com/you/go-ramadan-transfers/internal/service"
)

const (
	// maxQuotesInFlight bounds concurrent lookups for one connection.
	maxQuotesInFlight = 8
	wsWriteWait       = 10 * time.Second
	wsReadLimit       = 4096
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsQuoteRequest struct {
	ID      string `json:"id"`
	Vehicle string `json:"vehicle"`
	Service string `json:"service"`
	Date    string `json:"date"`
}

type wsQuoteReply struct {
	ID    string         `json:"id,omitempty"`
	Quote *quoteResponse `json:"quote,omitempty"`
	Error string         `json:"error,omitempty"`
}

// wsConn serialises writes; gorilla allows one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(reply wsQuoteReply) error {
	payload, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// QuotesWSHandler answers each {id,vehicle,service,date} frame with a quote
// frame carrying the same id. Frames are priced concurrently, so replies can
// arrive out of order.
func QuotesWSHandler(svc *service.PricingService, log zerolog.Logger) http.HandlerFunc {
	log = logger.Component(log, "ws_quotes")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("Upgrade failed")
			return
		}
		defer conn.Close()
		conn.SetReadLimit(wsReadLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := &wsConn{conn: conn}
		sem := make(chan struct{}, maxQuotesInFlight)
		var wg sync.WaitGroup
		defer wg.Wait()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Msg("Client read error")
				}
				return
			}
			var req wsQuoteRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				if err := out.send(wsQuoteReply{Error: "bad json"}); err != nil {
					return
				}
				continue
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			wg.Add(1)
			go func(req wsQuoteRequest) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := out.send(answerQuote(ctx, svc, req)); err != nil {
					log.Debug().Err(err).Msg("Client write error")
					cancel()
				}
			}(req)
		}
	}
}

func answerQuote(ctx context.Context, svc *service.PricingService, req wsQuoteRequest) wsQuoteReply {
	d, err := calendar.ParseDate(req.Date)
	if err != nil || req.Vehicle == "" || req.Service == "" {
		return wsQuoteReply{ID: req.ID, Error: "vehicle, service and date (YYYY-MM-DD) are required"}
	}
	resp, err := quoteFor(ctx, svc, req.Vehicle, req.Service, d)
	if err != nil {
		return wsQuoteReply{ID: req.ID, Error: err.Error()}
	}
	return wsQuoteReply{ID: req.ID, Quote: &resp}
}
